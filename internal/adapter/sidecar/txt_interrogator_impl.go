package sidecar

import (
	"context"
	"fmt"
	"os"

	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

// TxtInterrogator reads tags from the caption file next to the image, as
// written by external taggers.
type TxtInterrogator struct{}

// NewTxtInterrogator creates a new instance of TxtInterrogator.
func NewTxtInterrogator() *TxtInterrogator {
	return &TxtInterrogator{}
}

func (TxtInterrogator) Name() string { return "txt" }

// Interrogate returns the whitespace-normalised content of <stem>.txt.
func (TxtInterrogator) Interrogate(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(captionPath(imagePath))
	if err != nil {
		return "", fmt.Errorf("read caption file: %w", err)
	}
	return utils.NormalizeSpace(string(data)), nil
}
