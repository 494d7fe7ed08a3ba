package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Column limits for the human image and profile tables.
const (
	maxJudulWidth    = 40
	maxByWidth       = 20
	maxEndpointWidth = 50
)

// Formatter renders command results.
type Formatter interface {
	FormatLogin(w io.Writer, username string) error
	FormatUpload(w io.Writer, result *UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter picks JSON output when jsonOutput is set, human text otherwise.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter prints text for a terminal. Quiet keeps only the output a
// script would pipe onward, such as the image URL of an upload.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatLogin(w io.Writer, username string) error {
	if f.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(w, "Login OK: %s\n", username)
	return err
}

func (f *HumanFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	url := "(no image)"
	if result.ImageURL != nil {
		url = *result.ImageURL
	}

	if f.Quiet {
		_, err := fmt.Fprintln(w, url)
		return err
	}

	if result.LocalPath == "" {
		_, _ = fmt.Fprintf(w, "Created: %q\n", result.Judul)
	} else {
		_, _ = fmt.Fprintf(w, "Uploaded: %s %q (%s)\n", result.LocalPath, result.Judul, formatSize(result.Size))
	}
	_, err := fmt.Fprintf(w, "  URL: %s\n", url)
	return err
}

// FormatDownload is silent for stdout downloads so the body stays clean.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet || result.LocalPath == "-" {
		return nil
	}
	_, err := fmt.Fprintf(w, "Downloaded: %s (%s, %s)\n", result.LocalPath, result.ContentType, formatSize(result.Size))
	return err
}

func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Images) == 0 {
		_, err := fmt.Fprintln(w, "No images found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "JUDUL\tBY\tRATING\tTANGGAL\tIMAGE")
	for _, img := range result.Images {
		image := "-"
		if img.ImageURL != nil {
			image = *img.ImageURL
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			truncate(img.Judul, maxJudulWidth), truncate(img.By, maxByWidth), img.Rating, img.Tanggal, image)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if f.Quiet {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nPage %d of %d (%d image(s) total)\n", result.Page, result.TotalPages, result.Total)
	return err
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %v\n", err)
	return werr
}

func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  NAME\tENDPOINT\tUSERNAME")
	for _, p := range profiles {
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, p.Name, truncate(p.Endpoint, maxEndpointWidth), orNotSet(p.Username))
	}
	return tw.Flush()
}

func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	name := profile.Name
	if isDefault {
		name += " (default)"
	}
	_, err := fmt.Fprintf(w, "Name:     %s\nEndpoint: %s\nUsername: %s\n", name, profile.Endpoint, orNotSet(profile.Username))
	return err
}

// JSONFormatter prints indented JSON documents, one per call.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatLogin(w io.Writer, username string) error {
	return writeJSON(w, map[string]any{"success": true, "username": username})
}

func (f *JSONFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if result.LocalPath == "-" {
		return nil
	}
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

type profileJSON struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Username string `json:"username,omitempty"`
	Default  bool   `json:"default"`
}

func toProfileJSON(p Profile, isDefault bool) profileJSON {
	return profileJSON{Name: p.Name, Endpoint: p.Endpoint, Username: p.Username, Default: isDefault}
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	out := make([]profileJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileJSON(p, p.Name == defaultName))
	}
	return writeJSON(w, map[string][]profileJSON{"profiles": out})
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, toProfileJSON(profile, isDefault))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize renders a byte count with a binary unit. Negative sizes come
// from responses without Content-Length.
func formatSize(n int64) string {
	if n < 0 {
		return "unknown size"
	}

	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
