package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	sowingDateLayout        = "2006-01-02"
	minRequestQuantityKg    = 0.1
	maxRequestQuantityKg    = 99999999.99
	maxMunicipalityNameRune = 100
)

var (
	ErrRecommendationModeInvalid = errors.New("invalid recommendation mode")
	ErrCropRequired              = errors.New("crop is required")
	ErrCropUnknown               = errors.New("unknown crop")
	ErrMunicipalityRequired      = errors.New("municipality is required")
	ErrMunicipalityTooLong       = errors.New("municipality is too long")
	ErrSowingDateInvalid         = errors.New("invalid sowing date")
	ErrQuantityRequired          = errors.New("quantity is required")
	ErrQuantityInvalid           = errors.New("invalid quantity")
)

var quantityFormatRegex = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// RecommendationInput carries raw form or JSON values.
type RecommendationInput struct {
	Mode         string
	Crop         string
	Municipality string
	SowingDate   string
	Quantity     string
	// QuantityOptional lets API callers omit the quantity.
	QuantityOptional bool
}

type ValidatedRecommendationInput struct {
	Mode         string
	CropSlug     string
	Municipality string
	SowingDate   time.Time
	Quantity     float64
}

func ValidateRecommendationInput(input RecommendationInput, location *time.Location) (ValidatedRecommendationInput, error) {
	mode := strings.ToLower(strings.TrimSpace(input.Mode))
	if mode == "" {
		mode = RecommendationModeMunicipality
		if strings.TrimSpace(input.Crop) != "" {
			mode = RecommendationModeCrop
		}
	}

	validated := ValidatedRecommendationInput{Mode: mode}
	switch mode {
	case RecommendationModeCrop:
		if strings.TrimSpace(input.Crop) == "" {
			return ValidatedRecommendationInput{}, ErrCropRequired
		}
		slug, ok := LookupCropSlug(input.Crop)
		if !ok {
			return ValidatedRecommendationInput{}, ErrCropUnknown
		}
		validated.CropSlug = slug
	case RecommendationModeMunicipality:
		municipality := CanonicalMunicipality(input.Municipality)
		if municipality == "" {
			return ValidatedRecommendationInput{}, ErrMunicipalityRequired
		}
		if utf8.RuneCountInString(municipality) > maxMunicipalityNameRune {
			return ValidatedRecommendationInput{}, ErrMunicipalityTooLong
		}
		validated.Municipality = municipality
	default:
		return ValidatedRecommendationInput{}, ErrRecommendationModeInvalid
	}

	sowingDate, err := ParseSowingDate(input.SowingDate, location)
	if err != nil {
		return ValidatedRecommendationInput{}, err
	}
	validated.SowingDate = sowingDate

	quantity, err := ParseRequestQuantity(input.Quantity, input.QuantityOptional)
	if err != nil {
		return ValidatedRecommendationInput{}, err
	}
	validated.Quantity = quantity

	return validated, nil
}

func ParseSowingDate(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrSowingDateInvalid
	}
	parsed, err := time.ParseInLocation(sowingDateLayout, value, location)
	if err != nil {
		return time.Time{}, ErrSowingDateInvalid
	}
	return parsed, nil
}

// ParseRequestQuantity accepts kilograms between 0.1 and 99 999 999.99 with at
// most two decimals. A comma decimal separator is accepted.
func ParseRequestQuantity(raw string, optional bool) (float64, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if value == "" {
		if optional {
			return 0, nil
		}
		return 0, ErrQuantityRequired
	}

	if !quantityFormatRegex.MatchString(value) {
		return 0, ErrQuantityInvalid
	}

	quantity, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, ErrQuantityInvalid
	}
	if quantity < minRequestQuantityKg || quantity > maxRequestQuantityKg {
		return 0, ErrQuantityInvalid
	}
	return quantity, nil
}
