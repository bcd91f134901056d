package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/TIANLI0/MatteKit/config"
	"github.com/TIANLI0/MatteKit/matting"
	"github.com/TIANLI0/MatteKit/model"
	"github.com/TIANLI0/MatteKit/utils"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp"
)

var (
	// ErrQueueFull 等待处理槽位超时
	ErrQueueFull = errors.New("processing queue is full")
	// ErrInvalidImage 图片无法解码
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidMask 调用方提供的掩码无法解码
	ErrInvalidMask = errors.New("invalid mask")
)

// CutoutRequest 单次抠图请求
type CutoutRequest struct {
	Image []byte
	// Mask 可选灰度掩码，任意尺寸；提供时跳过推理
	Mask    []byte
	Options matting.Options
}

// CutoutService 负责解码、推理、精修与缓存
type CutoutService struct {
	segmenter    Segmenter
	cache        ResultCache
	defaults     matting.Options
	inputSize    int
	maxSide      int
	semaphore    chan struct{}
	queueTimeout time.Duration
	stats        *MaskStats
}

func NewCutoutService(cfg *config.Config, segmenter Segmenter, cache ResultCache) (*CutoutService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defaults, err := cfg.Matting.Options()
	if err != nil {
		return nil, err
	}
	return &CutoutService{
		segmenter:    segmenter,
		cache:        cache,
		defaults:     defaults,
		inputSize:    cfg.Model.InputSize,
		maxSide:      cfg.Upload.MaxSide,
		semaphore:    make(chan struct{}, cfg.Model.MaxConcurrent),
		queueTimeout: time.Duration(cfg.Model.QueueTimeout) * time.Second,
		stats:        NewMaskStats(),
	}, nil
}

// DefaultOptions 服务端配置的精修参数
func (s *CutoutService) DefaultOptions() matting.Options {
	return s.defaults
}

// CacheKey 图片 MD5 + 掩码与参数摘要，参数不同的结果互不覆盖
func CacheKey(imageMD5 string, mask []byte, opts matting.Options) string {
	h := md5.New()
	if len(mask) > 0 {
		h.Write([]byte(utils.BytesMD5(mask)))
	}
	data, _ := json.Marshal(opts)
	h.Write(data)
	return imageMD5 + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}

// Lookup 按缓存键查询结果，未命中返回 (nil, nil)
func (s *CutoutService) Lookup(ctx context.Context, key string) (*model.CutoutResult, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.Get(ctx, key)
}

// Process 处理一张图片，第二个返回值表示是否命中缓存
func (s *CutoutService) Process(ctx context.Context, req CutoutRequest) (*model.CutoutResult, bool, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, false, err
	}

	imageMD5 := utils.BytesMD5(req.Image)
	key := CacheKey(imageMD5, req.Mask, req.Options)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.String("key", key), zap.Error(err))
		}
		if cached != nil {
			utils.Logger.Info("cache hit", zap.String("key", key))
			return cached, true, nil
		}
	}

	// 并发控制
	if err := s.acquire(ctx); err != nil {
		return nil, false, err
	}
	defer func() { <-s.semaphore }()

	result, err := s.run(ctx, key, imageMD5, req)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			utils.Logger.Warn("failed to set cache", zap.String("key", key), zap.Error(err))
		}
	}
	return result, false, nil
}

// acquire 有空闲槽位时立即占用，否则最多等待 queueTimeout
func (s *CutoutService) acquire(ctx context.Context) error {
	select {
	case s.semaphore <- struct{}{}:
		return nil
	default:
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrQueueFull
	}
}

func (s *CutoutService) run(ctx context.Context, key, imageMD5 string, req CutoutRequest) (*model.CutoutResult, error) {
	startTime := time.Now()

	img, err := imaging.Decode(bytes.NewReader(req.Image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	guide := matting.ToNRGBA(s.limitSide(img))
	gw, gh := guide.Rect.Dx(), guide.Rect.Dy()

	utils.Logger.Info("processing image",
		zap.String("md5", imageMD5),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("scaled_width", gw),
		zap.Int("scaled_height", gh))

	var raw *matting.Mask
	source := model.SourceModel
	if len(req.Mask) > 0 {
		source = model.SourceMask
		raw, err = s.decodeMask(req.Mask)
	} else {
		raw, err = s.segment(ctx, guide)
	}
	if err != nil {
		return nil, err
	}

	pipeline, err := matting.NewPipeline(req.Options, utils.Logger.Named("matting"))
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Refine(guide, raw)
	if err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}

	imagePNG, err := encodeBase64PNG(res.Image)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	alphaPNG, err := encodeBase64PNG(matting.AlphaImage(res.Alpha))
	if err != nil {
		return nil, fmt.Errorf("encode alpha: %w", err)
	}

	coverage := s.stats.Coverage(res.Alpha)
	result := &model.CutoutResult{
		Key:           key,
		MD5:           imageMD5,
		Width:         gw,
		Height:        gh,
		Source:        source,
		Threshold:     int(res.Threshold),
		FeatherRadius: res.FeatherRadius,
		Coverage:      coverage,
		BoundingBox:   s.stats.BoundingBox(res.Alpha),
		Image:         imagePNG,
		Alpha:         alphaPNG,
		Timestamp:     time.Now().Unix(),
	}

	utils.Logger.Info("image processed successfully",
		zap.String("md5", imageMD5),
		zap.String("source", source),
		zap.Duration("duration", time.Since(startTime)),
		zap.Uint8("threshold", res.Threshold),
		zap.Int("feather_radius", res.FeatherRadius),
		zap.Float64("coverage", coverage))

	return result, nil
}

// segment 构造输入张量并调用推理引擎，输出 min-max 归一化到 [0,255]
func (s *CutoutService) segment(ctx context.Context, guide *image.NRGBA) (*matting.Mask, error) {
	if s.segmenter == nil {
		return nil, fmt.Errorf("%w: no segmenter configured", ErrInferenceUnavailable)
	}
	tensor, err := matting.NewInputTensor(guide, s.inputSize)
	if err != nil {
		return nil, err
	}
	out, err := s.segmenter.Segment(ctx, tensor)
	if err != nil {
		if errors.Is(err, ErrInferenceUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}
	mask, err := matting.NormalizeLogits(out, s.inputSize, s.inputSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceUnavailable, err)
	}
	return mask, nil
}

// decodeMask 调用方掩码已是 alpha 语义，不做 min-max，只转灰度并缩放到模型网格
func (s *CutoutService) decodeMask(data []byte) (*matting.Mask, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMask, err)
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	mask, err := matting.MaskFromBytes(gray.Pix, b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMask, err)
	}
	return matting.ResizeMask(mask, s.inputSize, s.inputSize)
}

// limitSide 最长边超过 maxSide 时等比缩小
func (s *CutoutService) limitSide(img image.Image) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	longest := max(w, h)
	if longest <= s.maxSide {
		return img
	}

	scale := float64(s.maxSide) / float64(longest)
	newW := max(1, int(float64(w)*scale+0.5))
	newH := max(1, int(float64(h)*scale+0.5))
	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
}

func encodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := matting.EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
