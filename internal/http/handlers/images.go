package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"rainbowrise/internal/imagegen"
)

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decode(w, r, &req, false); err != nil {
		a.json(w, http.StatusBadRequest, imageResponse{Message: "invalid payload"})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if utf8.RuneCountInString(prompt) < imagegen.MinPromptLength {
		a.json(w, http.StatusBadRequest, imageResponse{Message: "Prompt must be at least 3 characters"})
		return
	}
	url, err := a.Images.Generate(r.Context(), prompt)
	if err != nil {
		var perr *imagegen.ProviderError
		switch {
		case errors.Is(err, imagegen.ErrMissingAPIKey):
			a.json(w, http.StatusServiceUnavailable, imageResponse{Message: "Image generation is not configured"})
		case errors.As(err, &perr):
			a.Logger.Warn().Err(err).Int("provider_status", perr.Status).Msg("image generation failed")
			a.json(w, http.StatusBadGateway, imageResponse{Message: "Failed to generate image"})
		default:
			a.Logger.Error().Err(err).Msg("image generation failed")
			a.json(w, http.StatusInternalServerError, imageResponse{Message: "Internal Server Error"})
		}
		return
	}
	a.json(w, http.StatusOK, imageResponse{Success: true, ImageURL: url})
}
