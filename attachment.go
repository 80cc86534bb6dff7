package slims

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// attachmentPathColumn holds the repository-relative path of an attachment
const attachmentPathColumn = "attm_path"

// Attachment extends a record of the Attachment table with access to its
// binary content
type Attachment struct {
	*Record
}

// Content fetches the attachment's binary content
func (a *Attachment) Content(ctx context.Context) ([]byte, error) {
	resp, err := a.client.Get(ctx, "repo/"+strconv.FormatInt(a.PK(), 10))
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %d: %w", a.PK(), err)
	}
	if !resp.OK() {
		return nil, newAPIError("attachment download", resp)
	}
	return resp.Body, nil
}

// DownloadTo writes the attachment's content to path, replacing any existing file
func (a *Attachment) DownloadTo(ctx context.Context, path string) (err error) {
	content, err := a.Content(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LocalPath returns the attachment's location inside the configured file
// repository. It fails with a ConfigError when no repository is configured.
func (a *Attachment) LocalPath() (string, error) {
	root := a.client.repoLocation
	if root == "" {
		return "", NewConfigError("no repository location configured")
	}
	col, err := a.Column(attachmentPathColumn)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, col.String()), nil
}
