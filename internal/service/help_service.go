package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
)

// Fallback replies of the help assistant.
const (
	HelpNotConfigured = "দুঃখিত, বর্তমানে এআই সহকারীটি কনফিগার করা নেই। অনুগ্রহ করে অ্যাডমিনের সাথে যোগাযোগ করুন।"
	HelpNoAnswer      = "দুঃখিত, এখন উত্তর দিতে পারছি না।"
	HelpNetworkError  = "নেটওয়ার্ক সমস্যা। পরে চেষ্টা করুন।"
)

const helpInstruction = `আপনি একজন অত্যন্ত বিনয়ী এবং আন্তরিক ইসলামিক ভাবধারার সহকারী।
আপনার কথা বলার স্টাইল হবে খুব সংক্ষিপ্ত, সরাসরি এবং মানুষের মতো।
কথার শুরুতে অবশ্যই 'আসসালামু আলাইকুম' বলবেন (যদি না এটি কোনো চলমান কথোপকথনের মাঝের অংশ হয়)।

আপনার দায়িত্ব:
১. লগইন, পাসওয়ার্ড পুনরুদ্ধার বা পোর্টাল সংক্রান্ত সাধারণ প্রশ্নের উত্তর দেওয়া।
২. উত্তরগুলো ২-৩ বাক্যের মধ্যে সীমাবদ্ধ রাখা।
৩. যদি ব্যবহারকারী অনেক বেশি প্রশ্ন করে বা জটিল প্রযুক্তিগত সাহায্য চায়, তবে তাকে সরাসরি অ্যাডমিনের সাথে যোগাযোগ করতে বলুন।

অপ্রয়োজনীয় ভূমিকা বা অতিরিক্ত কথা একদম এড়িয়ে চলবেন।`

// HelpService answers portal questions through the Gemini generateContent
// API. It never fails: every problem becomes one of the fallback replies.
type HelpService struct {
	cfg    config.HelpConfig
	logger *zap.Logger
}

// NewHelpService builds the service.
func NewHelpService(cfg config.HelpConfig, logger *zap.Logger) *HelpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HelpService{cfg: cfg, logger: logger}
}

type helpPart struct {
	Text string `json:"text"`
}

type helpContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []helpPart `json:"parts"`
}

type helpRequest struct {
	SystemInstruction helpContent   `json:"systemInstruction"`
	Contents          []helpContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type helpResponse struct {
	Candidates []struct {
		Content helpContent `json:"content"`
	} `json:"candidates"`
}

// Configured reports whether an API key is present.
func (h *HelpService) Configured() bool {
	return strings.TrimSpace(h.cfg.APIKey) != ""
}

// Ask sends text to the assistant and returns its reply.
func (h *HelpService) Ask(ctx context.Context, text string) string {
	if !h.Configured() {
		h.logger.Warn("help assistant has no api key")
		return HelpNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return HelpNetworkError
	}

	body := helpRequest{
		SystemInstruction: helpContent{Parts: []helpPart{{Text: helpInstruction}}},
		Contents:          []helpContent{{Role: "user", Parts: []helpPart{{Text: text}}}},
	}
	body.GenerationConfig.Temperature = 0.5

	timeout := h.cfg.Timeout()
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(h.cfg.BaseURL, "/"), h.cfg.Model)
	agent := fiber.Post(url).
		Set("x-goog-api-key", h.cfg.APIKey).
		JSON(body).
		Timeout(timeout)
	if err := agent.Parse(); err != nil {
		h.logger.Error("help assistant request", zap.Error(err))
		return HelpNetworkError
	}

	var resp helpResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		h.logger.Error("help assistant call failed", zap.Errors("errors", errs))
		return HelpNetworkError
	}
	if code != fiber.StatusOK {
		h.logger.Error("help assistant call failed", zap.Int("status", code))
		return HelpNetworkError
	}

	var reply strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			reply.WriteString(p.Text)
		}
		if reply.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(reply.String()) == "" {
		return HelpNoAnswer
	}
	return reply.String()
}

// AskAsync runs Ask in the background. The channel receives exactly one reply.
func (h *HelpService) AskAsync(ctx context.Context, text string) <-chan string {
	out := make(chan string, 1)
	go func() {
		out <- h.Ask(ctx, text)
	}()
	return out
}
