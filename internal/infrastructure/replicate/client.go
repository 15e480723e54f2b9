// Package replicate 提供 Replicate 预测 API 的同步调用封装
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pixgen-ai-api/internal/config"
	apperrors "pixgen-ai-api/pkg/errors"
	"pixgen-ai-api/pkg/logger"
	"pixgen-ai-api/pkg/metrics"
)

var clientTracer = otel.Tracer("replicate.client")

// predictionRequest 创建预测的请求体
type predictionRequest struct {
	Input map[string]any `json:"input"`
}

// prediction Replicate 预测对象，Output 形态由模型决定
type prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  any    `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Client Replicate HTTP 客户端
type Client struct {
	httpClient   *http.Client
	token        string
	baseURL      string
	waitSeconds  int
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewClient 创建 Replicate 客户端
func NewClient(cfg config.ReplicateConfig) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		token:        cfg.APIToken,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		waitSeconds:  cfg.WaitSeconds,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
	}
}

// Run 以同步偏好创建预测并等待终态，返回模型原始输出。
// model 形如 owner/name，未配置凭证时直接失败。
func (c *Client) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	ctx, span := clientTracer.Start(ctx, "replicate.Run",
		trace.WithAttributes(attribute.String("replicate.model", model)))
	defer span.End()

	if c.token == "" {
		return nil, apperrors.New(apperrors.CodeCredentialMissing, "replicate api token is not configured")
	}

	owner, name, ok := strings.Cut(model, "/")
	if !ok || owner == "" || name == "" {
		return nil, apperrors.New(apperrors.CodeProviderError, "invalid model identifier").
			WithDetail(model)
	}

	start := time.Now()
	output, err := c.run(ctx, owner, name, input)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.ProviderCallTotal.WithLabelValues(model, status).Inc()
	metrics.ProviderCallDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	return output, err
}

func (c *Client) run(ctx context.Context, owner, name string, input map[string]any) (any, error) {
	body, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "failed to encode prediction input")
	}

	url := fmt.Sprintf("%s/models/%s/%s/predictions", c.baseURL, owner, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "failed to build prediction request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", fmt.Sprintf("wait=%d", c.waitSeconds))

	pred, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if isTerminal(pred.Status) {
		return finish(pred)
	}

	logger.Debug(ctx, "prediction still running, entering poll loop",
		"prediction_id", pred.ID, "status", pred.Status)
	return c.poll(ctx, pred)
}

// poll 轮询预测直到终态或超时
func (c *Client) poll(ctx context.Context, pred *prediction) (any, error) {
	if pred.URLs.Get == "" {
		return nil, apperrors.New(apperrors.CodeProviderError, "prediction has no poll url").
			WithDetail(pred.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeProviderError, "prediction polling timed out").
				WithDetail(pred.ID)
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pred.URLs.Get, nil)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "failed to build poll request")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		current, err := c.do(req)
		if err != nil {
			return nil, err
		}

		if isTerminal(current.Status) {
			return finish(current)
		}
	}
}

// do 执行请求并解析预测对象，非 2xx 按错误分类
func (c *Client) do(req *http.Request) (*prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "replicate request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "failed to read replicate response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyHTTP(resp.StatusCode, string(body))
	}

	var pred prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProviderError, "invalid replicate response").
			WithDetail(truncate(string(body), 512))
	}
	return &pred, nil
}

// finish 处理终态预测：succeeded 返回输出，其余状态按失败分类
func finish(pred *prediction) (any, error) {
	if pred.Status == "succeeded" {
		return pred.Output, nil
	}

	detail := fmt.Sprintf("status=%s", pred.Status)
	if pred.Error != nil {
		detail = fmt.Sprintf("%s error=%v", detail, pred.Error)
	}
	return nil, classifyMessage(fmt.Sprintf("%v", pred.Error)).WithDetail(detail)
}

func isTerminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
