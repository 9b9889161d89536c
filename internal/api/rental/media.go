package rental

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/models"
)

// ListVehicleMedia 列出车辆的全部媒体
func (c *Client) ListVehicleMedia(ctx context.Context, vehicleID int64) ([]models.MediaItem, error) {
	var items []models.MediaItem
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/vehicles/%d/media/all", vehicleID), nil, &items); err != nil {
		return nil, fmt.Errorf("list vehicle media: %w", err)
	}
	return items, nil
}

// DownloadMedia 下载媒体二进制内容，返回字节和 Content-Type
func (c *Client) DownloadMedia(ctx context.Context, vehicleID, mediaID int64) ([]byte, string, error) {
	path := fmt.Sprintf("/v1/vehicles/%d/media/%d/download", vehicleID, mediaID)
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("download media failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read media body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// CreateMedia 创建媒体元数据记录（上传的第一阶段）
func (c *Client) CreateMedia(ctx context.Context, vehicleID int64, item models.MediaItem) (*models.MediaItem, error) {
	var created models.MediaItem
	if err := c.postJSON(ctx, fmt.Sprintf("/v1/vehicles/%d/media", vehicleID), item, &created); err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return &created, nil
}

// UploadMediaFile 上传媒体字节（上传的第二阶段）
func (c *Client) UploadMediaFile(ctx context.Context, vehicleID, mediaID int64, fileName string, file []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := w.WriteField("fileName", fileName); err != nil {
		return fmt.Errorf("write file name field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	path := fmt.Sprintf("/v1/vehicles/%d/media/%d/upload", vehicleID, mediaID)
	resp, err := c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, nil)
}

// DeleteMedia 删除媒体记录
func (c *Client) DeleteMedia(ctx context.Context, vehicleID, mediaID int64) error {
	return c.delete(ctx, fmt.Sprintf("/v1/vehicles/%d/media/%d", vehicleID, mediaID), nil)
}

// UploadMedia 两阶段上传：先建元数据记录，再传字节
// 第二阶段失败时删除已建的记录，避免留下孤儿元数据
func (c *Client) UploadMedia(ctx context.Context, vehicleID int64, item models.MediaItem, fileName string, file []byte) (*models.MediaItem, error) {
	created, err := c.CreateMedia(ctx, vehicleID, item)
	if err != nil {
		return nil, err
	}

	if err := c.UploadMediaFile(ctx, vehicleID, created.ID, fileName, file); err != nil {
		if cleanupErr := c.DeleteMedia(ctx, vehicleID, created.ID); cleanupErr != nil {
			c.logger.Warn("Failed to clean up orphaned media record",
				zap.Int64("vehicle_id", vehicleID),
				zap.Int64("media_id", created.ID),
				zap.Error(cleanupErr))
		}
		return nil, fmt.Errorf("upload media file: %w", err)
	}

	return created, nil
}
