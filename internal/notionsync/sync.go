// Package notionsync mirrors the per-region and per-department summary statistics
// into a Notion database, one page per group.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/jomei/notionapi"
)

// queryPageSize is the largest page size the Notion API accepts.
const queryPageSize = 100

// Result counts what a sync did (or would do, in dry-run mode).
type Result struct {
	Created  int
	Updated  int
	Archived int
	Failed   int
}

type groupPage struct {
	title string
	props notionapi.Properties
}

// SyncSummary makes the database hold exactly one page per group of summary.
// Existing pages are matched by title and updated, missing ones are created and
// pages for groups that no longer exist are archived. Per-page failures are logged
// and counted; only a failed database query aborts the sync.
func SyncSummary(ctx context.Context, notionClient NotionService, notionDBID string, summary analyser.SummaryStats, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx)

	wanted := summaryPages(summary)
	log.Info().
		Int("groups", len(wanted)).
		Bool("dry_run", dryRun).
		Msg("Starting summary sync to Notion")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return Result{}, fmt.Errorf("SyncSummary: failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	wantedTitles := make(map[string]bool, len(wanted))
	for _, p := range wanted {
		wantedTitles[p.title] = true
	}

	var res Result
	existing := make(map[string]string, len(notionPages))
	for _, page := range notionPages {
		title := extractTitle(page)
		_, dup := existing[title]
		if title != "" && wantedTitles[title] && !dup {
			existing[title] = string(page.ID)
			continue
		}

		// Untitled, stale or duplicate.
		if dryRun {
			log.Info().Str("title", title).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("title", title).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		log.Info().Str("title", title).Str("page_id", string(page.ID)).Msg("Archived stale Notion page")
		res.Archived++
	}

	for _, p := range wanted {
		pageID, found := existing[p.title]

		if dryRun {
			if found {
				log.Info().Str("title", p.title).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				res.Updated++
			} else {
				log.Info().Str("title", p.title).Msg("[DRY RUN] Would create Notion page")
				res.Created++
			}
			continue
		}

		if found {
			if _, err := notionClient.UpdatePage(ctx, pageID, p.props); err != nil {
				log.Warn().Err(err).Str("title", p.title).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, p.props)
		if err != nil {
			log.Warn().Err(err).Str("title", p.title).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		log.Debug().Str("title", p.title).Str("page_id", string(page.ID)).Msg("Created Notion page")
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Msg("Summary sync completed")

	return res, nil
}

func summaryPages(s analyser.SummaryStats) []groupPage {
	pages := make([]groupPage, 0, len(s.ByRegion)+len(s.ByDepartment))
	for _, g := range s.ByRegion {
		pages = append(pages, groupPage{title: PageTitle(GroupRegion, g.Key), props: GroupToNotionProperties(GroupRegion, g)})
	}
	for _, g := range s.ByDepartment {
		pages = append(pages, groupPage{title: PageTitle(GroupDepartment, g.Key), props: GroupToNotionProperties(GroupDepartment, g)})
	}
	return pages
}

// queryAllNotionPages follows the cursor until every page of the database is read.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
