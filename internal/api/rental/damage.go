package rental

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
)

// DamagePhoto 归还检查时按部位拍摄的照片
// Position 取值 front/back/leftSide/rightSide/mileage
type DamagePhoto struct {
	Position string
	FileName string
	Data     []byte
}

// DamageAssessment 车辆归还时的状况报告
type DamageAssessment struct {
	UserID          int64
	VehicleID       int64
	ConditionReport string
	Photos          []DamagePhoto
}

// SubmitDamageAssessment 提交归还检查报告
// 照片按部位作为表单字段逐个附带
func (c *Client) SubmitDamageAssessment(ctx context.Context, in DamageAssessment) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("userId", strconv.FormatInt(in.UserID, 10)); err != nil {
		return fmt.Errorf("write user id field: %w", err)
	}
	if err := w.WriteField("vehicleId", strconv.FormatInt(in.VehicleID, 10)); err != nil {
		return fmt.Errorf("write vehicle id field: %w", err)
	}
	if err := w.WriteField("conditionReport", in.ConditionReport); err != nil {
		return fmt.Errorf("write condition report field: %w", err)
	}

	// 按部位排序保证请求体稳定
	photos := make([]DamagePhoto, len(in.Photos))
	copy(photos, in.Photos)
	sort.Slice(photos, func(i, j int) bool { return photos[i].Position < photos[j].Position })

	for _, p := range photos {
		part, err := w.CreateFormFile(p.Position, p.FileName)
		if err != nil {
			return fmt.Errorf("create photo part %s: %w", p.Position, err)
		}
		if _, err := part.Write(p.Data); err != nil {
			return fmt.Errorf("write photo %s: %w", p.Position, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/damage-assessments", nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, "/v1/damage-assessments", nil)
}
