package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "ytpl",
		Short: "ytpl - YouTube playlist downloader",
		Long:  `A command-line interface for downloading YouTube playlists through yt-dlp.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(cookiesCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Queue a playlist for download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		url := args[0]
		quality, _ := cmd.Flags().GetString("quality")
		cookie, _ := cmd.Flags().GetString("cookie")

		payload := map[string]string{
			"url": url,
		}
		if quality != "" {
			payload["quality"] = quality
		}
		if cookie != "" {
			payload["cookie"] = cookie
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/playlists", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		fmt.Printf("Playlist queued successfully!\n")
		fmt.Printf("ID:      %s\n", result["id"])
		fmt.Printf("Title:   %s\n", result["title"])
		fmt.Printf("Videos:  %v\n", result["entry_count"])
		fmt.Printf("Output:  %s\n", result["output_dir"])
	},
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List all playlists",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		resp, err := http.Get(serverURL + "/api/v1/playlists")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var playlists []map[string]interface{}
		json.Unmarshal(body, &playlists)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tQUALITY\tSTATUS\tVIDEOS")
		for _, p := range playlists {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
				truncate(str(p["id"]), 8),
				truncate(str(p["title"]), 40),
				p["quality"],
				p["status"],
				p["entry_count"])
		}
		w.Flush()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all downloads",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		status, _ := cmd.Flags().GetString("status")
		playlistID, _ := cmd.Flags().GetString("playlist")

		url := serverURL + "/api/v1/downloads"
		sep := "?"
		if status != "" {
			url += sep + "status=" + status
			sep = "&"
		}
		if playlistID != "" {
			url += sep + "playlist_id=" + playlistID
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var downloads []map[string]interface{}
		json.Unmarshal(body, &downloads)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tIDX\tTITLE\tSTATUS\tRETRIES")
		for _, d := range downloads {
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\t%v\n",
				truncate(str(d["id"]), 8),
				d["index"],
				truncate(str(d["title"]), 40),
				d["status"],
				d["retry_count"])
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/downloads/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:      %v\n", stats["total"])
		fmt.Printf("  Queued:     %v\n", stats["queued"])
		fmt.Printf("  Processing: %v\n", stats["processing"])
		fmt.Printf("  Completed:  %v\n", stats["completed"])
		fmt.Printf("  Failed:     %v\n", stats["failed"])
		fmt.Printf("  Cancelled:  %v\n", stats["cancelled"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Get(serverURL + "/api/v1/downloads/" + id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var download map[string]interface{}
		json.Unmarshal(body, &download)

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %s\n", download["id"])
		fmt.Printf("  Title:    %s\n", download["title"])
		fmt.Printf("  URL:      %s\n", download["url"])
		fmt.Printf("  Index:    %v\n", download["index"])
		fmt.Printf("  Status:   %s\n", download["status"])
		fmt.Printf("  Created:  %s\n", download["created_at"])
		if download["file_path"] != nil {
			fmt.Printf("  File:     %s\n", download["file_path"])
		}
		if download["error_message"] != nil {
			fmt.Printf("  Error:    %s\n", download["error_message"])
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/cancel", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download cancelled successfully")
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry [id]",
	Short: "Retry a failed download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/retry", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download queued for retry")
	},
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "List uploaded cookie files",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/cookies")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var names []string
		json.Unmarshal(body, &names)

		if len(names) == 0 {
			fmt.Println("No cookie files uploaded")
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

func init() {
	addCmd.Flags().StringP("quality", "q", "high", "Quality (high, 720p, 360p)")
	addCmd.Flags().StringP("cookie", "c", "", "Name of an uploaded cookie file")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().StringP("playlist", "p", "", "Filter by playlist ID")
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
