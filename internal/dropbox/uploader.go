// Package dropbox uploads the complaint PDF to the shared lab folder
// and resolves a shareable link for the audit row.
package dropbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/sharing"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
)

type Uploader struct {
	files   files.Client
	sharing sharing.Client
	folder  string
	logger  logger.Logger
}

// NewUploader builds a client from config. Team-scoped tokens select a
// member through the Dropbox-API-Select-User header.
func NewUploader(cfg config.DropboxConfig, log logger.Logger) *Uploader {
	sdkCfg := dropbox.Config{
		Token:      cfg.AccessToken,
		AsMemberID: cfg.TeamMemberID,
	}

	folder := strings.TrimSpace(cfg.Folder)
	if folder != "" && !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}

	return &Uploader{
		files:   files.New(sdkCfg),
		sharing: sharing.New(sdkCfg),
		folder:  strings.TrimRight(folder, "/"),
		logger:  log.WithFields(map[string]interface{}{"collaborator": "dropbox"}),
	}
}

// Upload stores the PDF under the configured folder (overwrite mode, so
// retried runs do not collide) and returns the target path plus a
// shared link. A missing shared link is not an upload failure.
func (u *Uploader) Upload(_ context.Context, filename string, data []byte) (string, string, error) {
	if u.folder == "" {
		return "", "", fmt.Errorf("dropbox folder not configured")
	}

	if err := u.ensureFolder(); err != nil {
		return "", "", err
	}

	targetPath := u.folder + "/" + filename

	arg := files.NewUploadArg(targetPath)
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: "overwrite"}}
	arg.Mute = true

	if _, err := u.files.Upload(arg, bytes.NewReader(data)); err != nil {
		return "", "", fmt.Errorf("upload %s: %w", targetPath, err)
	}

	link, err := u.sharedLink(targetPath)
	if err != nil {
		u.logger.Warn("uploaded, but shared link not created", map[string]interface{}{
			"path":  targetPath,
			"error": err.Error(),
		})
		link = ""
	}

	u.logger.Info("upload complete", map[string]interface{}{
		"path": targetPath,
	})
	return targetPath, link, nil
}

// ensureFolder creates the target folder if missing. Shared or team
// folders only need the selected member to have access.
func (u *Uploader) ensureFolder() error {
	md, err := u.files.GetMetadata(files.NewGetMetadataArg(u.folder))
	if err == nil {
		if _, ok := md.(*files.FolderMetadata); ok {
			return nil
		}
		return fmt.Errorf("dropbox path exists but is not a folder: %s", u.folder)
	}

	if _, err := u.files.CreateFolderV2(files.NewCreateFolderArg(u.folder)); err != nil {
		return fmt.Errorf("create folder %s: %w", u.folder, err)
	}
	u.logger.Info("created folder", map[string]interface{}{"folder": u.folder})
	return nil
}

func (u *Uploader) sharedLink(targetPath string) (string, error) {
	listArg := sharing.NewListSharedLinksArg()
	listArg.Path = targetPath
	listArg.DirectOnly = true

	if res, err := u.sharing.ListSharedLinks(listArg); err == nil && len(res.Links) > 0 {
		if url := linkURL(res.Links[0]); url != "" {
			return url, nil
		}
	}

	created, err := u.sharing.CreateSharedLinkWithSettings(sharing.NewCreateSharedLinkWithSettingsArg(targetPath))
	if err != nil {
		return "", err
	}
	return linkURL(created), nil
}

func linkURL(md sharing.IsSharedLinkMetadata) string {
	switch l := md.(type) {
	case *sharing.FileLinkMetadata:
		return l.Url
	case *sharing.FolderLinkMetadata:
		return l.Url
	case *sharing.SharedLinkMetadata:
		return l.Url
	default:
		return ""
	}
}
