package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"manual-assistant-be/internal/config"
	"manual-assistant-be/internal/model"
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/internal/repository/contract"
	"manual-assistant-be/internal/repository/implementation"
	"manual-assistant-be/internal/service"
	"manual-assistant-be/pkg/cache"
	"manual-assistant-be/pkg/database"
	"manual-assistant-be/pkg/embedding"
	"manual-assistant-be/pkg/events"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

func main() {
	var manualsDir string
	var force bool
	flag.StringVar(&manualsDir, "dir", "", "directory with manual PDFs (default: MANUALS_DIR)")
	flag.BoolVar(&force, "force", false, "re-ingest manuals already registered")
	flag.Parse()

	cfg := config.Load()
	if manualsDir == "" {
		manualsDir = cfg.Rag.ManualsDir
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	libraryRepo := implementation.NewLibraryRepository(db)
	contentRepo := implementation.NewContentRepository(db)
	pdfExtractor := extractor.NewPDFExtractor()

	contentCache, err := cache.NewContentCache(cfg.Rag.CacheDir, sysLogger)
	if err != nil {
		log.Fatalf("Unable to initialize content cache: %v", err)
	}

	var embedder embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	// In-process bus: the warm-cache consumer pre-computes structural
	// summaries while the next manual is being embedded.
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	warmCache := service.NewWarmCacheService(pubSub, events.TopicManualIngested, pdfExtractor, contentCache, sysLogger)

	ctx := context.Background()
	if err := warmCache.Consume(ctx); err != nil {
		log.Fatalf("Unable to start cache warm consumer: %v", err)
	}

	entries, err := os.ReadDir(manualsDir)
	if err != nil {
		log.Fatalf("Unable to read manuals directory %s: %v", manualsDir, err)
	}

	var ingested, skipped, failed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(manualsDir, entry.Name())

		status, err := ingestManual(ctx, path, force, libraryRepo, contentRepo, pdfExtractor, embedder, pubSub)
		switch {
		case err != nil:
			failed++
			color.Red("✗ %s: %v", entry.Name(), err)
		case status == statusSkipped:
			skipped++
			color.Yellow("– %s: already registered", entry.Name())
		default:
			ingested++
			color.Green("✓ %s", entry.Name())
		}
	}

	// Give the in-process consumer a moment to drain warm-cache events.
	time.Sleep(2 * time.Second)

	color.Cyan("\nDone: %d ingested, %d skipped, %d failed", ingested, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

const (
	statusIngested = "ingested"
	statusSkipped  = "skipped"
)

func ingestManual(
	ctx context.Context,
	path string,
	force bool,
	libraryRepo contract.LibraryRepository,
	contentRepo contract.ContentRepository,
	pdfExtractor *extractor.PDFExtractor,
	embedder embedding.Provider,
	pubSub *gochannel.GoChannel,
) (string, error) {
	hash, err := cache.HashFile(path)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}

	if !force {
		existing, err := libraryRepo.FindByDocumentId(ctx, hash)
		if err != nil {
			return "", fmt.Errorf("lookup: %w", err)
		}
		if existing != nil {
			return statusSkipped, nil
		}
	}

	summary, err := pdfExtractor.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}

	name := parseManualName(filepath.Base(path))
	cardSummary := buildCardSummary(name.DisplayName, summary)

	cardEmbedding, err := embedder.Generate(ctx, cardSummary, embedding.TaskRetrievalDocument)
	if err != nil {
		return "", fmt.Errorf("embed card: %w", err)
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"page_count": summary.PageCount,
		"outline":    summary.Outline,
	})

	card := &model.LibraryCard{
		Id:             uuid.New(),
		DocumentId:     hash,
		DisplayName:    name.DisplayName,
		FamilyId:       name.FamilyID,
		Year:           name.Year,
		VersionLabel:   name.VersionLabel,
		VersionNumber:  name.VersionNumber,
		SourcePath:     path,
		Summary:        cardSummary,
		Metadata:       metadata,
		EmbeddingValue: pgvector.NewVector(cardEmbedding.Values),
	}
	if err := libraryRepo.Upsert(ctx, card); err != nil {
		return "", fmt.Errorf("upsert card: %w", err)
	}

	chunks, err := buildChunks(ctx, path, hash, pdfExtractor, embedder)
	if err != nil {
		return "", err
	}

	if err := contentRepo.DeleteByDocumentId(ctx, hash); err != nil {
		return "", fmt.Errorf("delete old chunks: %w", err)
	}
	if len(chunks) > 0 {
		if err := contentRepo.CreateBulk(ctx, chunks); err != nil {
			return "", fmt.Errorf("store chunks: %w", err)
		}
	}

	if err := recomputeCurrentVersion(ctx, libraryRepo, name.FamilyID); err != nil {
		return "", fmt.Errorf("mark current version: %w", err)
	}

	publishIngested(pubSub, events.ManualIngested{
		DocumentID:  hash,
		DisplayName: name.DisplayName,
		SourcePath:  path,
		ChunkCount:  len(chunks),
		OccurredAt:  time.Now(),
	})

	return statusIngested, nil
}

func buildChunks(
	ctx context.Context,
	path, hash string,
	pdfExtractor *extractor.PDFExtractor,
	embedder embedding.Provider,
) ([]*model.ContentChunk, error) {
	pages, err := pdfExtractor.PageTexts(path)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	var chunks []*model.ContentChunk
	index := 0
	for _, page := range pages {
		for _, text := range utils.SplitText(page.Text, chunkSize, chunkOverlap) {
			res, err := embedder.Generate(ctx, text, embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d: %w", index, err)
			}
			chunks = append(chunks, &model.ContentChunk{
				Id:             uuid.New(),
				DocumentId:     hash,
				Text:           text,
				Page:           page.Page,
				ChunkIndex:     index,
				EmbeddingValue: pgvector.NewVector(res.Values),
			})
			index++
		}
	}
	return chunks, nil
}

// recomputeCurrentVersion enforces the one-current-version-per-family rule:
// the card with the greatest (year, versionNumber) pair wins.
func recomputeCurrentVersion(ctx context.Context, libraryRepo contract.LibraryRepository, familyID string) error {
	family, err := libraryRepo.FindFamily(ctx, familyID)
	if err != nil {
		return err
	}
	if len(family) == 0 {
		return nil
	}

	best := family[0]
	for _, card := range family[1:] {
		if card.Year > best.Year || (card.Year == best.Year && card.VersionNumber > best.VersionNumber) {
			best = card
		}
	}
	return libraryRepo.MarkCurrentVersion(ctx, familyID, best.DocumentId)
}

func publishIngested(pubSub *gochannel.GoChannel, event events.ManualIngested) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := pubSub.Publish(events.TopicManualIngested, msg); err != nil {
		log.Printf("[WARN] Failed to publish ingest event for %s: %v", event.DisplayName, err)
	}
}

type manualName struct {
	DisplayName   string
	FamilyID      string
	Year          int
	VersionLabel  string
	VersionNumber int
}

var (
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	versionPattern = regexp.MustCompile(`(?i)\bv(?:er(?:sion)?)?[._ ]?(\d+)\b`)
	familyCleaner  = regexp.MustCompile(`[^a-z0-9]+`)
)

// parseManualName derives family, year and version from a corpus filename
// like "Manual_Facturacion_2023_v2.pdf". The family id ignores version and
// year tokens so successive editions land in the same family.
func parseManualName(filename string) manualName {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	name := manualName{
		DisplayName: strings.TrimSpace(strings.ReplaceAll(base, "_", " ")),
	}

	if m := yearPattern.FindString(base); m != "" {
		name.Year, _ = strconv.Atoi(m)
	}
	if m := versionPattern.FindStringSubmatch(base); m != nil {
		name.VersionNumber, _ = strconv.Atoi(m[1])
		name.VersionLabel = "v" + m[1]
	}

	family := strings.ToLower(base)
	family = yearPattern.ReplaceAllString(family, "")
	family = versionPattern.ReplaceAllString(family, "")
	family = familyCleaner.ReplaceAllString(family, "_")
	name.FamilyID = strings.Trim(family, "_")

	return name
}

func buildCardSummary(displayName string, summary *extractor.StructuralSummary) string {
	var b strings.Builder
	b.WriteString("Manual: " + displayName + "\n")
	if summary.Title != "" && summary.Title != displayName {
		b.WriteString("Título: " + summary.Title + "\n")
	}
	if len(summary.Outline) > 0 {
		b.WriteString("Contenido:\n")
		for _, entry := range summary.Outline {
			b.WriteString("- " + strings.TrimSpace(entry) + "\n")
		}
	}
	if len(summary.KeyHeadings) > 0 {
		b.WriteString("Secciones: " + strings.Join(summary.KeyHeadings, "; ") + "\n")
	}
	if summary.OpeningExcerpt != "" {
		b.WriteString("\n" + summary.OpeningExcerpt)
	}
	return b.String()
}
