package commands

import (
	"fmt"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/app"
	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/collector"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/gutenberg"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/spf13/cobra"
)

const defaultUserAgent = "story-gen-corpus-builder/1.0 (research; contact@example.org)"

// CorpusCommandHandler encapsulates logic for building the text corpus via CLI.
type CorpusCommandHandler struct {
	logger logger.Logger
}

// NewCorpusCommandHandler initializes and returns a CorpusCommandHandler instance
// with a configured logger.
func NewCorpusCommandHandler() (*CorpusCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &CorpusCommandHandler{logger: loggerInstance}, nil
}

// DownloadCorpusCmd downloads the curated Gutenberg books into a selected directory
func (commandHandler *CorpusCommandHandler) DownloadCorpusCmd(cmd *cobra.Command, _ []string) {
	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		commandHandler.logger.Error("invalid output-dir flag ", err)
		return
	}
	genres, err := cmd.Flags().GetStringSlice("genres")
	if err != nil {
		commandHandler.logger.Error("invalid genres flag ", err)
		return
	}
	maxBooks, err := cmd.Flags().GetInt("max-books")
	if err != nil {
		commandHandler.logger.Error("invalid max-books flag ", err)
		return
	}
	delay, err := cmd.Flags().GetInt("delay")
	if err != nil {
		commandHandler.logger.Error("invalid delay flag ", err)
		return
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		commandHandler.logger.Error("invalid user-agent flag ", err)
		return
	}

	downloader, err := gutenberg.NewDownloader(userAgent, 60*time.Second, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	downloadService, err := app.NewDownloadService(downloader, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	results, err := downloadService.DownloadCorpus(cmd.Context(), corpus.DownloadOptions{
		OutputDir: outputDir,
		MaxBooks:  maxBooks,
		Genres:    genres,
		Delay:     delay,
	})
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	commandHandler.logger.Info("Downloaded ", succeeded, " of ", len(results), " books to ", outputDir)
}

// ListBooksCmd prints the curated Gutenberg catalog
func (commandHandler *CorpusCommandHandler) ListBooksCmd(cmd *cobra.Command, _ []string) {
	genreFilter, err := cmd.Flags().GetString("genre")
	if err != nil {
		commandHandler.logger.Error("invalid genre flag ", err)
		return
	}

	listed := 0
	for _, key := range corpus.SortedBookKeys() {
		genre := corpus.GenreOf(key)
		if genreFilter != "" && genre != genreFilter {
			continue
		}
		commandHandler.logger.Info(key, " (", genre, ") -> ", corpus.BookURL(corpus.CuratedBooks[key]))
		listed++
	}
	commandHandler.logger.Info("Listed ", listed, " curated books")
}

// CollectCmd fetches a single web page, strips its markup and stores the text
func (commandHandler *CorpusCommandHandler) CollectCmd(cmd *cobra.Command, _ []string) {
	url, err := cmd.Flags().GetString("url")
	if err != nil {
		commandHandler.logger.Error("invalid url flag ", err)
		return
	}
	source, err := cmd.Flags().GetString("source")
	if err != nil {
		commandHandler.logger.Error("invalid source flag ", err)
		return
	}
	dsn, err := cmd.Flags().GetString("db")
	if err != nil {
		commandHandler.logger.Error("invalid db flag ", err)
		return
	}
	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		commandHandler.logger.Error("invalid user-agent flag ", err)
		return
	}

	db, err := openDatabase(dsn)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	documentRepo, err := persistence.NewGormDocumentRepository(db, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fetcher, err := collector.NewFetcher(userAgent, 30*time.Second, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	collectorService, err := app.NewCollectorService(fetcher, documentRepo, nil, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	doc, err := collectorService.Collect(cmd.Context(), source, url)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Collected document ", doc.ID, " (", len(doc.Content), " bytes) from ", url)
}

// ListDocumentsCmd lists collected documents stored in the registry
func (commandHandler *CorpusCommandHandler) ListDocumentsCmd(cmd *cobra.Command, _ []string) {
	dsn, err := cmd.Flags().GetString("db")
	if err != nil {
		commandHandler.logger.Error("invalid db flag ", err)
		return
	}
	source, err := cmd.Flags().GetString("source")
	if err != nil {
		commandHandler.logger.Error("invalid source flag ", err)
		return
	}
	genre, err := cmd.Flags().GetString("genre")
	if err != nil {
		commandHandler.logger.Error("invalid genre flag ", err)
		return
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		commandHandler.logger.Error("invalid limit flag ", err)
		return
	}

	metadataService, err := commandHandler.corpusMetadataService(dsn)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	query := corpus.NewDocumentQuery()
	query.Source = source
	query.Genre = genre
	if limit > 0 {
		query.Limit = limit
	}

	docs, err := metadataService.List(cmd.Context(), query)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	for _, doc := range docs {
		commandHandler.logger.Info(doc.ID, " ", doc.Source, " ", doc.Title, " (", len(doc.Content), " bytes)")
	}
	commandHandler.logger.Info("Listed ", len(docs), " documents")
}

// AnnotateCmd computes and stores statistics for stored documents
func (commandHandler *CorpusCommandHandler) AnnotateCmd(cmd *cobra.Command, _ []string) {
	dsn, err := cmd.Flags().GetString("db")
	if err != nil {
		commandHandler.logger.Error("invalid db flag ", err)
		return
	}
	documentID, err := cmd.Flags().GetString("document-id")
	if err != nil {
		commandHandler.logger.Error("invalid document-id flag ", err)
		return
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		commandHandler.logger.Error("invalid all flag ", err)
		return
	}

	db, err := openDatabase(dsn)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	documentRepo, err := persistence.NewGormDocumentRepository(db, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	annotationRepo, err := persistence.NewGormAnnotationRepository(db, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	annotationService, err := app.NewAnnotationService(documentRepo, annotationRepo, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if all {
		annotations, err := annotationService.AnnotateAll(cmd.Context())
		if err != nil {
			commandHandler.logger.Error(err)
			return
		}
		commandHandler.logger.Info("Annotated ", len(annotations), " documents")
		return
	}

	if documentID == "" {
		commandHandler.logger.Error("either --document-id or --all must be set")
		return
	}

	annotation, err := annotationService.Annotate(cmd.Context(), documentID)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Annotated document ", documentID,
		": tokens=", annotation.Tokens,
		" sentences=", annotation.Sentences,
		" type_token_ratio=", annotation.TypeTokenRatio)
}

// corpusMetadataService wires a metadata service over the sqlite registry.
func (commandHandler *CorpusCommandHandler) corpusMetadataService(dsn string) (corpus.MetadataService, error) {
	db, err := openDatabase(dsn)
	if err != nil {
		return nil, err
	}

	documentRepo, err := persistence.NewGormDocumentRepository(db, commandHandler.logger)
	if err != nil {
		return nil, err
	}
	annotationRepo, err := persistence.NewGormAnnotationRepository(db, commandHandler.logger)
	if err != nil {
		return nil, err
	}

	return app.NewCorpusMetadataService(documentRepo, annotationRepo, commandHandler.logger)
}

// InitCorpusCommands registers corpus-related commands
func InitCorpusCommands(rootCmd *cobra.Command) error {
	handler, err := NewCorpusCommandHandler()

	if err != nil {
		return fmt.Errorf("failed to create corpus command handler %w", err)
	}

	var downloadCorpusCmd = &cobra.Command{
		Use:   "download-corpus",
		Short: "Download the curated Gutenberg books",
		Run:   handler.DownloadCorpusCmd,
	}
	downloadCorpusCmd.Flags().StringP("output-dir", "", "data/raw", "Directory to store the downloaded books")
	downloadCorpusCmd.Flags().StringSliceP("genres", "", nil, "Genres to download (default all)")
	downloadCorpusCmd.Flags().IntP("max-books", "", 0, "Maximum number of books to download (0 means no cap)")
	downloadCorpusCmd.Flags().IntP("delay", "", 2, "Seconds to wait between downloads")
	downloadCorpusCmd.Flags().StringP("user-agent", "", defaultUserAgent, "HTTP user agent")
	rootCmd.AddCommand(downloadCorpusCmd)

	var listBooksCmd = &cobra.Command{
		Use:   "list-books",
		Short: "List the curated Gutenberg catalog",
		Run:   handler.ListBooksCmd,
	}
	listBooksCmd.Flags().StringP("genre", "", "", "Filter by genre")
	rootCmd.AddCommand(listBooksCmd)

	var collectCmd = &cobra.Command{
		Use:   "collect",
		Short: "Collect a web page into the corpus",
		Run:   handler.CollectCmd,
	}
	collectCmd.Flags().StringP("url", "", "", "URL of the page to collect")
	collectCmd.Flags().StringP("source", "", "web", "Source label for the collected document")
	collectCmd.Flags().StringP("db", "", "story_gen.db", "Path to the sqlite registry")
	collectCmd.Flags().StringP("user-agent", "", defaultUserAgent, "HTTP user agent")
	rootCmd.AddCommand(collectCmd)

	var listDocumentsCmd = &cobra.Command{
		Use:   "list-documents",
		Short: "List collected documents",
		Run:   handler.ListDocumentsCmd,
	}
	listDocumentsCmd.Flags().StringP("db", "", "story_gen.db", "Path to the sqlite registry")
	listDocumentsCmd.Flags().StringP("source", "", "", "Filter by source")
	listDocumentsCmd.Flags().StringP("genre", "", "", "Filter by genre")
	listDocumentsCmd.Flags().IntP("limit", "", 0, "Maximum number of documents to list")
	rootCmd.AddCommand(listDocumentsCmd)

	var annotateCmd = &cobra.Command{
		Use:   "annotate",
		Short: "Compute statistics for stored documents",
		Run:   handler.AnnotateCmd,
	}
	annotateCmd.Flags().StringP("db", "", "story_gen.db", "Path to the sqlite registry")
	annotateCmd.Flags().StringP("document-id", "", "", "ID of the document to annotate")
	annotateCmd.Flags().BoolP("all", "", false, "Annotate every stored document")
	rootCmd.AddCommand(annotateCmd)

	return nil
}
