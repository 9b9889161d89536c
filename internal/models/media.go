package models

// 媒体类型常量（后端枚举的图片/视频槽位）
const (
	MediaTypeCoverImage    = "COVER_IMAGE"
	MediaTypeFrontImage    = "FRONT_IMAGE"
	MediaTypeBackImage     = "BACK_IMAGE"
	MediaTypeSideImage     = "SIDE_IMAGE"
	MediaTypeInteriorImage = "INTERIOR_IMAGE"
	MediaTypeExteriorVideo = "EXTERIOR_VIDEO"
	MediaTypeInteriorVideo = "INTERIOR_VIDEO"
)

// MediaItem 车辆媒体项
type MediaItem struct {
	ID        int64  `json:"id"`
	VehicleID int64  `json:"vehicleId"`
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	IsVideo   bool   `json:"isVideo"`
	IsCover   bool   `json:"isCover"`
}

// IsVideoType 判断媒体类型是否为视频槽位
func IsVideoType(mediaType string) bool {
	return mediaType == MediaTypeExteriorVideo || mediaType == MediaTypeInteriorVideo
}
