package internal

import (
	"fmt"
	"log/slog"

	"github.com/halloran/medkit/internal/cardservice"
	"github.com/halloran/medkit/internal/index"
	"github.com/halloran/medkit/internal/mcpserver"
	"github.com/halloran/medkit/internal/normalize"
	"github.com/halloran/medkit/internal/store"
	"github.com/halloran/medkit/internal/verify"
)

// RunNormalize executes the content normalization batch job: load the store,
// fix every card, write the whole file back once, and print a run summary.
// Nothing is written when any step fails.
func RunNormalize(cfg *Config) error {
	logger := NewLogger(cfg)

	st, err := store.NewFile(cfg.Content.Path)
	if err != nil {
		return err
	}

	doc, _, err := st.Load()
	if err != nil {
		return err
	}

	report, err := normalize.Run(doc, logger)
	if err != nil {
		return err
	}

	if _, err := st.Save(doc); err != nil {
		return err
	}

	fmt.Println(styled(styleHeading, "Normalization complete"))
	fmt.Printf("  cards processed:  %d\n", report.Total)
	fmt.Printf("  tags added:       %d\n", report.TagsAdded)
	fmt.Printf("  markup stripped:  %d\n", report.MarkupStripped)
	if report.Modified == 0 {
		fmt.Println(styled(styleSuccess, "  no cards needed changes"))
	} else {
		fmt.Printf("  %s %d\n", styled(styleWarn, "cards modified:  "), report.Modified)
	}
	return nil
}

// RunVerify syncs the index from the content store and prints a read-only
// content health report. A dirty report is an error so the process exits
// non-zero.
func RunVerify(cfg *Config) error {
	logger := NewLogger(cfg)

	st, err := store.NewFile(cfg.Content.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, st, logger); err != nil {
		return err
	}

	report, err := verify.Run(db)
	if err != nil {
		return err
	}

	fmt.Println(styled(styleHeading, "Content verification"))
	fmt.Printf("  cards:    %d\n", report.Cards)
	fmt.Printf("  chapters: %d\n", report.Chapters)
	for _, f := range report.Findings {
		fmt.Printf("  %s %s\n", styled(styleWarn, f.Kind+":"), f.Detail)
	}
	if !report.Clean() {
		return fmt.Errorf("verification found %d issue(s)", len(report.Findings))
	}
	fmt.Println(styled(styleSuccess, "  no issues found"))
	return nil
}

// RunMCP starts the MCP stdio server backed by the content store and index.
func RunMCP(cfg *Config) error {
	logger := NewLogger(cfg)

	st, err := store.NewFile(cfg.Content.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, st, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := cardservice.NewService(st, db)
	return mcpserver.New(svc).ServeStdio()
}
