package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relaymind/knowledgecore/internal/service"
)

// IngestCmd ingests a local file into a container, running the same pipeline
// the upload endpoint runs.
func IngestCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "ingest <container> <file>",
		Short: "Ingest a local file into a knowledge container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			containerID, path := args[0], args[1]

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.pipeline.ProcessUpload(ctx, service.UploadInput{
				ContainerID: containerID,
				OwnerID:     owner,
				FileData:    data,
				FileName:    filepath.Base(path),
			})
			if err != nil {
				return fmt.Errorf("ingestion failed: %w", err)
			}

			fmt.Printf("Ingested %s: %d chunks (version %d, hash %s)\n",
				filepath.Base(path), result.Chunks, result.ContentVersion, result.ContentHash)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")

	return cmd
}

// CrawlCmd ingests a website into a container.
func CrawlCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "crawl <container> <url>",
		Short: "Crawl a website into a knowledge container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.crawler == nil {
				return fmt.Errorf("crawling not configured: GEMINI_API_KEY required")
			}

			chunks, err := a.crawler.CrawlURL(ctx, args[0], owner, args[1])
			if err != nil {
				return fmt.Errorf("crawl failed: %w", err)
			}

			fmt.Printf("Crawled %s: %d chunks\n", args[1], chunks)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")

	return cmd
}

// YouTubeCmd ingests a video transcript into a container.
func YouTubeCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "youtube <container> <url>",
		Short: "Transcribe a YouTube video into a knowledge container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.youtube == nil {
				return fmt.Errorf("transcription not configured: GEMINI_API_KEY required")
			}

			chunks, err := a.youtube.ProcessVideo(ctx, args[0], owner, args[1])
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}

			fmt.Printf("Transcribed %s: %d chunks\n", args[1], chunks)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")

	return cmd
}

// QueryCmd assembles the grounding context for a query, the way a chat turn
// would.
func QueryCmd() *cobra.Command {
	var (
		owner  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "query <container> <query...>",
		Short: "Retrieve the grounding context for a query",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			query := strings.Join(args[1:], " ")

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.assembler.GetContextForQuery(ctx, args[0], owner, query)

			if output == "json" {
				jsonBytes, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(jsonBytes))
				return nil
			}

			if result.Text == "" {
				fmt.Println("No matching knowledge found.")
				return nil
			}
			fmt.Println(result.Text)
			if len(result.Sources) > 0 {
				fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")

	return cmd
}

// DocsCmd lists or clears the documents of a container.
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage stored documents",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsClearCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	var (
		owner  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list <container>",
		Short: "List the documents stored in a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := a.docs.GetAll(ctx, args[0], owner)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}

			if output == "json" {
				jsonBytes, _ := json.MarshalIndent(docs, "", "  ")
				fmt.Println(string(jsonBytes))
				return nil
			}

			if len(docs) == 0 {
				fmt.Println("No documents found.")
				return nil
			}
			for _, d := range docs {
				name := d.Metadata.Filename
				if name == "" {
					name = d.Metadata.URL
				}
				fmt.Printf("%s  %s  chunk %d/%d  v%d  %s\n",
					d.ID, name, d.Metadata.ChunkIndex, d.Metadata.TotalChunks,
					d.Metadata.ContentVersion, d.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or json)")

	return cmd
}

func docsClearCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "clear <container>",
		Short: "Delete every document in a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.docs.DeleteAll(ctx, args[0], owner)
			if err != nil {
				return fmt.Errorf("failed to clear container: %w", err)
			}

			fmt.Printf("Deleted %d documents\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner ID the documents belong to")
	cmd.MarkFlagRequired("owner")

	return cmd
}
