package media

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/FieldAtlas/FA-Backend/internal/errs"
)

func TestValidateHotspotTarget(t *testing.T) {
	assetID := uuid.New()
	panoID := uuid.New()

	tests := []struct {
		name    string
		asset   *uuid.UUID
		pano    *uuid.UUID
		yaw     float64
		pitch   float64
		wantErr bool
	}{
		{"asset target", &assetID, nil, 30, -10, false},
		{"pano target", nil, &panoID, -180, 90, false},
		{"no target", nil, nil, 0, 0, true},
		{"both targets", &assetID, &panoID, 0, 0, true},
		{"yaw too low", &assetID, nil, -180.5, 0, true},
		{"yaw too high", &assetID, nil, 181, 0, true},
		{"pitch too low", &assetID, nil, 0, -90.1, true},
		{"pitch too high", &assetID, nil, 0, 91, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHotspotTarget(tt.asset, tt.pano, tt.yaw, tt.pitch)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMedia(t *testing.T) {
	if err := validateMedia("Lobby", "north entrance", "abc.jpg", "lobby-07"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateMedia("", "", "abc.jpg", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
	if err := validateMedia("Lobby", "", "  ", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank content ref, got %v", err)
	}
	long := strings.Repeat("x", 256)
	if err := validateMedia("Lobby", long, "abc.jpg", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized description, got %v", err)
	}
	marker := strings.Repeat("m", 101)
	if err := validateMedia("Lobby", "", "abc.jpg", marker); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized marker, got %v", err)
	}
}
