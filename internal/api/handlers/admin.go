package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/models"
)

// vehicleRequest 车辆创建/更新请求
// VIN 必须是 17 位且不含 I/O/Q
type vehicleRequest struct {
	Make         string  `json:"make" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required,gte=1950,lte=2100"`
	VIN          string  `json:"vin" validate:"required,vin"`
	LicensePlate string  `json:"licensePlate" validate:"required"`
	VehicleType  string  `json:"vehicleType" validate:"required"`
	Status       string  `json:"status"`
	Passengers   int     `json:"passengers" validate:"gte=0"`
	Doors        int     `json:"doors" validate:"gte=0"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	PricePerDay  float64 `json:"pricePerDay" validate:"gte=0"`
	Active       bool    `json:"active"`
}

func (r vehicleRequest) toVehicle() models.Vehicle {
	status := r.Status
	if status == "" {
		status = models.VehicleStatusAvailable
	}
	return models.Vehicle{
		Make:         r.Make,
		Model:        r.Model,
		Year:         r.Year,
		VIN:          r.VIN,
		LicensePlate: r.LicensePlate,
		VehicleType:  r.VehicleType,
		Status:       status,
		Passengers:   r.Passengers,
		Doors:        r.Doors,
		FuelType:     r.FuelType,
		Transmission: r.Transmission,
		PricePerDay:  r.PricePerDay,
		Active:       r.Active,
	}
}

// AdminListVehicles 车队列表，支持筛选分页排序
func (h *Handler) AdminListVehicles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	result, err := h.client.SearchVehicles(c.Request.Context(), rental.SearchParams{
		Make:         c.Query("make"),
		Model:        c.Query("model"),
		VehicleType:  c.Query("vehicleType"),
		FuelType:     c.Query("fuelType"),
		Transmission: c.Query("transmission"),
		Status:       c.Query("status"),
		Sort:         c.Query("sort"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		h.logger.Error("Failed to list vehicles", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list vehicles"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdminGetVehicle 车辆详情
func (h *Handler) AdminGetVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	vehicle, err := h.client.GetVehicle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicle})
}

// AdminCreateVehicle 创建车辆
func (h *Handler) AdminCreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	created, err := h.client.CreateVehicle(c.Request.Context(), req.toVehicle())
	if err != nil {
		h.logger.Error("Failed to create vehicle", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create vehicle"})
		return
	}

	h.logger.Info("Vehicle created", zap.Int64("vehicle_id", created.ID), zap.String("vin", created.VIN))
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// AdminUpdateVehicle 更新车辆
func (h *Handler) AdminUpdateVehicle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	vehicle := req.toVehicle()
	vehicle.ID = id
	updated, err := h.client.UpdateVehicle(c.Request.Context(), id, vehicle)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		h.logger.Error("Failed to update vehicle", zap.Error(err), zap.Int64("vehicle_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update vehicle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// AdminListMedia 车辆媒体列表
func (h *Handler) AdminListMedia(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	items, err := h.client.ListVehicleMedia(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list media", zap.Error(err), zap.Int64("vehicle_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// AdminUploadMedia 上传媒体文件
// 两阶段：元数据记录成功但字节上传失败时记录会被回收
func (h *Handler) AdminUploadMedia(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	mediaType := c.PostForm("type")
	if mediaType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media type is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read media file"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read media file"})
		return
	}

	item := models.MediaItem{
		VehicleID: id,
		Type:      mediaType,
		FileName:  fileHeader.Filename,
		IsVideo:   models.IsVideoType(mediaType),
		IsCover:   mediaType == models.MediaTypeCoverImage,
	}

	created, err := h.client.UploadMedia(c.Request.Context(), id, item, fileHeader.Filename, data)
	if err != nil {
		h.logger.Error("Failed to upload media", zap.Error(err), zap.Int64("vehicle_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload media"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// AdminDownloadMedia 下载媒体字节
func (h *Handler) AdminDownloadMedia(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}
	mediaID, err := strconv.ParseInt(c.Param("mediaId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media ID"})
		return
	}

	data, contentType, err := h.client.DownloadMedia(c.Request.Context(), id, mediaID)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		h.logger.Error("Failed to download media", zap.Error(err), zap.Int64("media_id", mediaID))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to download media"})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// AdminDeleteMedia 删除媒体
func (h *Handler) AdminDeleteMedia(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}
	mediaID, err := strconv.ParseInt(c.Param("mediaId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media ID"})
		return
	}

	if err := h.client.DeleteMedia(c.Request.Context(), id, mediaID); err != nil {
		h.logger.Error("Failed to delete media", zap.Error(err), zap.Int64("media_id", mediaID))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": mediaID})
}

// AdminListEquipment 全部装备项
func (h *Handler) AdminListEquipment(c *gin.Context) {
	items, err := h.client.ListEquipment(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list equipment", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list equipment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// AdminListVehicleEquipment 车辆已装配的装备
func (h *Handler) AdminListVehicleEquipment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return
	}

	items, err := h.client.ListVehicleEquipment(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list vehicle equipment", zap.Error(err), zap.Int64("vehicle_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list vehicle equipment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// AdminAssignEquipment 给车辆装配装备
func (h *Handler) AdminAssignEquipment(c *gin.Context) {
	vehicleID, equipmentID, ok := h.pathPair(c, "equipmentId")
	if !ok {
		return
	}

	if err := h.client.AssignEquipment(c.Request.Context(), vehicleID, equipmentID); err != nil {
		h.logger.Error("Failed to assign equipment", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to assign equipment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "equipment_id": equipmentID})
}

// AdminRemoveEquipment 移除车辆装备
func (h *Handler) AdminRemoveEquipment(c *gin.Context) {
	vehicleID, equipmentID, ok := h.pathPair(c, "equipmentId")
	if !ok {
		return
	}

	if err := h.client.RemoveEquipment(c.Request.Context(), vehicleID, equipmentID); err != nil {
		h.logger.Error("Failed to remove equipment", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to remove equipment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "equipment_id": equipmentID})
}

// AdminListPricingCategories 价格类别列表
func (h *Handler) AdminListPricingCategories(c *gin.Context) {
	categories, err := h.client.ListPricingCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list pricing categories", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list pricing categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// AdminAssignPricing 给车辆指派价格类别
func (h *Handler) AdminAssignPricing(c *gin.Context) {
	vehicleID, categoryID, ok := h.pathPair(c, "categoryId")
	if !ok {
		return
	}

	if err := h.client.AssignPricingCategory(c.Request.Context(), vehicleID, categoryID); err != nil {
		h.logger.Error("Failed to assign pricing category", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to assign pricing category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "category_id": categoryID})
}

// AdminRemovePricing 移除车辆的价格类别
func (h *Handler) AdminRemovePricing(c *gin.Context) {
	vehicleID, categoryID, ok := h.pathPair(c, "categoryId")
	if !ok {
		return
	}

	if err := h.client.RemovePricingCategory(c.Request.Context(), vehicleID, categoryID); err != nil {
		h.logger.Error("Failed to remove pricing category", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to remove pricing category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "category_id": categoryID})
}

// pathPair 解析 :id 加一个次级路径参数
func (h *Handler) pathPair(c *gin.Context, secondParam string) (int64, int64, bool) {
	first, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID"})
		return 0, 0, false
	}
	second, err := strconv.ParseInt(c.Param(secondParam), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + secondParam})
		return 0, 0, false
	}
	return first, second, true
}

// validationMessage 取第一条校验失败信息
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0]
		if field.Tag() == "vin" {
			return "VIN must be 17 characters and contain no I, O or Q"
		}
		return "Invalid field: " + field.Field()
	}
	return "Invalid payload"
}
