package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/TIANLI0/MatteKit/config"
	"github.com/TIANLI0/MatteKit/matting"
	"github.com/TIANLI0/MatteKit/middleware"
	"github.com/TIANLI0/MatteKit/model"
	"github.com/TIANLI0/MatteKit/service"
	"github.com/TIANLI0/MatteKit/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CutoutHandler struct {
	cfg           *config.Config
	cutoutService *service.CutoutService
}

func NewCutoutHandler(cfg *config.Config, cutout *service.CutoutService) *CutoutHandler {
	return &CutoutHandler{
		cfg:           cfg,
		cutoutService: cutout,
	}
}

// Create 上传图片并抠图
func (h *CutoutHandler) Create(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.Logger.Error("failed to get uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传图片文件",
			Error:   err.Error(),
		})
		return
	}

	imageData, ok := h.readUpload(c, file)
	if !ok {
		return
	}

	var maskData []byte
	if maskFile, err := c.FormFile("mask"); err == nil {
		if maskData, ok = h.readUpload(c, maskFile); !ok {
			return
		}
	}

	var params model.CutoutParams
	if err := c.ShouldBind(&params); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "参数格式错误",
			Error:   err.Error(),
		})
		return
	}
	opts, err := applyParams(h.cutoutService.DefaultOptions(), params)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "参数无效",
			Error:   err.Error(),
		})
		return
	}

	utils.Logger.Info("file uploaded",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.Bool("with_mask", maskData != nil))

	result, cached, err := h.cutoutService.Process(c.Request.Context(), service.CutoutRequest{
		Image:   imageData,
		Mask:    maskData,
		Options: opts,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "处理成功"
	if cached {
		message = "处理成功（来自缓存）"
	}
	c.JSON(http.StatusOK, model.CutoutResponse{
		Success: true,
		Message: message,
		Cached:  cached,
		Data:    result,
	})
}

// Get 按缓存键查询结果
func (h *CutoutHandler) Get(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, model.CutoutResponse{
		Success: true,
		Message: "查询成功",
		Cached:  true,
		Data:    result,
	})
}

// Download 导出 PNG，layer=alpha 时导出灰度 alpha
func (h *CutoutHandler) Download(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	encoded, suffix := result.Image, "cutout"
	if c.Query("layer") == "alpha" {
		encoded, suffix = result.Alpha, "alpha"
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		utils.Logger.Error("failed to decode cached png", zap.String("key", result.Key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "导出失败",
			Error:   err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.png"`, result.MD5, suffix))
	c.Data(http.StatusOK, "image/png", data)
}

func (h *CutoutHandler) lookup(c *gin.Context) (*model.CutoutResult, bool) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "key参数缺失",
		})
		return nil, false
	}

	result, err := h.cutoutService.Lookup(c.Request.Context(), key)
	if err != nil {
		utils.Logger.Error("failed to get cutout result", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询失败",
			Error:   err.Error(),
		})
		return nil, false
	}

	if result == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该图片的抠图结果",
		})
		return nil, false
	}
	return result, true
}

// readUpload 校验大小与类型后读入内存
func (h *CutoutHandler) readUpload(c *gin.Context, file *multipart.FileHeader) ([]byte, bool) {
	// 验证文件大小
	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return nil, false
	}

	// 验证文件类型
	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型，仅支持 JPEG/PNG/WebP",
		})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		utils.Logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "读取文件失败",
			Error:   err.Error(),
		})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.Upload.MaxSize+1))
	if err != nil {
		utils.Logger.Error("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "读取文件失败",
			Error:   err.Error(),
		})
		return nil, false
	}
	return data, true
}

// fail 按错误类型映射状态码
func (h *CutoutHandler) fail(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "图片处理失败"
	switch {
	case errors.Is(err, service.ErrInvalidImage):
		status, message = http.StatusBadRequest, "图片无法解码"
	case errors.Is(err, service.ErrInvalidMask):
		status, message = http.StatusBadRequest, "掩码无法解码"
	case errors.Is(err, matting.ErrInvalidOptions):
		status, message = http.StatusBadRequest, "参数无效"
	case errors.Is(err, service.ErrQueueFull):
		status, message = http.StatusServiceUnavailable, "处理队列已满，请稍后重试"
	case errors.Is(err, service.ErrInferenceUnavailable):
		status, message = http.StatusServiceUnavailable, "分割模型不可用，可上传掩码重试"
	}

	if status >= http.StatusInternalServerError {
		utils.Logger.Error("failed to process image", zap.Error(err))
	} else {
		utils.Logger.Warn("rejected image", zap.Error(err))
	}
	c.JSON(status, model.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

func (h *CutoutHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// applyParams 把请求里出现的字段覆盖到默认参数上
func applyParams(opts matting.Options, p model.CutoutParams) (matting.Options, error) {
	if p.Threshold != nil {
		opts.Threshold = autoIfNegative(*p.Threshold)
	}
	if p.FeatherRadius != nil {
		opts.FeatherRadius = autoIfNegative(*p.FeatherRadius)
	}
	setIf(&opts.GuidedRadius, p.GuidedRadius)
	setIf(&opts.GuidedEps, p.GuidedEps)
	setIf(&opts.TrimapBand, p.TrimapBand)
	setIf(&opts.AntiAliasMaxDist, p.AntiAliasMaxDist)
	setIf(&opts.DespillSampleRadius, p.DespillSampleRadius)
	setIf(&opts.DespillStrength, p.DespillStrength)
	setIf(&opts.DespillHueShift, p.DespillHueShift)
	setIf(&opts.MorphologyRadius, p.MorphologyRadius)
	setIf(&opts.UseTrimap, p.UseTrimap)
	setIf(&opts.UseMorphology, p.UseMorphology)
	setIf(&opts.UseDespill, p.UseDespill)
	setIf(&opts.BlendOriginal, p.BlendOriginal)

	if p.BackingColor != nil {
		if strings.EqualFold(*p.BackingColor, "transparent") {
			opts.Backing = nil
		} else {
			backing, err := matting.ParseBackingColor(*p.BackingColor)
			if err != nil {
				return opts, err
			}
			opts.Backing = backing
		}
	}
	return opts, opts.Validate()
}

// autoIfNegative 负数（约定 -1）表示回到自动选择
func autoIfNegative(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
