package services

import (
	"slices"
	"sort"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
)

const (
	RecommendationModeCrop         = "crop"
	RecommendationModeMunicipality = "municipality"
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
)

const (
	suggestionLimit     = 3
	regionalHarvestDays = 90
)

// Profile yields are per hectare; projections assume a 1 000 m² plot, i.e.
// 100 kg harvested per tonne of hectare yield.
const profilePlotKgPerTonne = 100.0

type CropSuggestion struct {
	Slug            string    `json:"slug"`
	Crop            string    `json:"crop"`
	CycleDays       int       `json:"cycle_days"`
	HarvestDate     time.Time `json:"harvest_date"`
	YieldKg         float64   `json:"yield_kg"`
	PriceKg         float64   `json:"price_kg"`
	ProjectedIncome float64   `json:"projected_income"`
	ExpectedRevenue float64   `json:"expected_revenue"`
	Reason          string    `json:"reason,omitempty"`
	Description     string    `json:"description,omitempty"`
	Care            string    `json:"care"`
	InSeason        bool      `json:"in_season"`
	Viability       string    `json:"viability"`
}

type CropAnalysis struct {
	Slug            string    `json:"slug"`
	Crop            string    `json:"crop"`
	Optimal         bool      `json:"optimal"`
	Risk            string    `json:"risk"`
	Viability       string    `json:"viability"`
	CycleDays       int       `json:"cycle_days"`
	HarvestDate     time.Time `json:"harvest_date"`
	PriceKg         float64   `json:"price_kg"`
	ExpectedRevenue float64   `json:"expected_revenue"`
}

type RegionalSuggestion struct {
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	PriceKg       float64   `json:"price_kg"`
	HarvestDate   time.Time `json:"harvest_date"`
	OptimalTemp   string    `json:"optimal_temp"`
	Precipitation string    `json:"precipitation"`
}

// Recommendation is the document persisted as the request's recommendation
// text and rendered on result pages.
type Recommendation struct {
	Mode         string               `json:"mode"`
	Season       Season               `json:"season"`
	Crop         string               `json:"crop,omitempty"`
	Municipality string               `json:"municipality,omitempty"`
	SowingDate   time.Time            `json:"sowing_date"`
	Quantity     float64              `json:"quantity"`
	Analysis     *CropAnalysis        `json:"analysis,omitempty"`
	Suggestions  []CropSuggestion     `json:"suggestions"`
	Regional     []RegionalSuggestion `json:"regional"`
	HarvestDate  time.Time            `json:"harvest_date"`
	Viability    string               `json:"viability"`
}

func SeasonForMonth(month time.Month) Season {
	switch month {
	case time.December, time.January, time.February:
		return SeasonDryWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonRainySummer
	default:
		return SeasonAutumn
	}
}

// RecommendForMunicipality returns the fixed bundle for the sowing season in
// declared order.
func RecommendForMunicipality(municipality string, sowingDate time.Time, quantity float64) Recommendation {
	place := CanonicalMunicipality(municipality)
	climate := ClimateForMunicipality(municipality)
	season := SeasonForMonth(sowingDate.Month())

	bundle := seasonalBundles[season]
	suggestions := make([]CropSuggestion, 0, len(bundle))
	for _, entry := range bundle {
		price, _ := CorabastosPrice(entry.Slug)
		cycleDays := CropCycleDays(entry.Slug)
		suggestions = append(suggestions, CropSuggestion{
			Slug:            entry.Slug,
			Crop:            CropName(entry.Slug),
			CycleDays:       cycleDays,
			HarvestDate:     HarvestDate(sowingDate, cycleDays),
			YieldKg:         entry.YieldKg,
			PriceKg:         price,
			ProjectedIncome: entry.YieldKg * price,
			ExpectedRevenue: ExpectedRevenue(quantity, price),
			Reason:          entry.Reason(place, climate),
			Care:            entry.Care,
			InSeason:        true,
			Viability:       models.ViabilityVeryViable,
		})
	}

	recommendation := Recommendation{
		Mode:         RecommendationModeMunicipality,
		Season:       season,
		Municipality: place,
		SowingDate:   sowingDate,
		Quantity:     quantity,
		Suggestions:  suggestions,
		Regional:     RegionalInSeason(sowingDate),
		Viability:    models.ViabilityVeryViable,
	}
	if len(suggestions) > 0 {
		recommendation.HarvestDate = suggestions[0].HarvestDate
	}
	return recommendation
}

// RecommendForCrop analyses the requested crop and ranks the crop profiles
// for the sowing month. cropSlug must come from LookupCropSlug.
func RecommendForCrop(cropSlug string, sowingDate time.Time, quantity float64) Recommendation {
	analysis := AnalyzeCrop(cropSlug, sowingDate, quantity)
	return Recommendation{
		Mode:        RecommendationModeCrop,
		Season:      SeasonForMonth(sowingDate.Month()),
		Crop:        analysis.Crop,
		SowingDate:  sowingDate,
		Quantity:    quantity,
		Analysis:    &analysis,
		Suggestions: RankCropProfiles(sowingDate, quantity),
		Regional:    RegionalInSeason(sowingDate),
		HarvestDate: analysis.HarvestDate,
		Viability:   analysis.Viability,
	}
}

func AnalyzeCrop(cropSlug string, sowingDate time.Time, quantity float64) CropAnalysis {
	cycleDays := CropCycleDays(cropSlug)
	price, ok := CorabastosPrice(cropSlug)
	if !ok {
		if profile, found := findCropProfile(cropSlug); found {
			price = profile.PriceKg
		}
	}

	analysis := CropAnalysis{
		Slug:            cropSlug,
		Crop:            CropName(cropSlug),
		Optimal:         slices.Contains(CropOptimalMonths(cropSlug), sowingDate.Month()),
		CycleDays:       cycleDays,
		HarvestDate:     HarvestDate(sowingDate, cycleDays),
		PriceKg:         price,
		ExpectedRevenue: ExpectedRevenue(quantity, price),
	}
	if analysis.Optimal {
		analysis.Risk = RiskLow
		analysis.Viability = models.ViabilityVeryViable
	} else {
		analysis.Risk = RiskModerate
		analysis.Viability = models.ViabilityViableWithCare
	}
	return analysis
}

// RankCropProfiles puts in-season crops first ordered by projected income and
// tops the list up with the best remaining crops when fewer than three fit
// the sowing month.
func RankCropProfiles(sowingDate time.Time, quantity float64) []CropSuggestion {
	month := sowingDate.Month()
	all := make([]CropSuggestion, 0, len(cropProfiles))
	for _, profile := range cropProfiles {
		yieldKg := profile.YieldKgPerHa / 1000 * profilePlotKgPerTonne
		inSeason := slices.Contains(profile.OptimalMonths, month)
		viability := models.ViabilityViableWithCare
		if inSeason {
			viability = models.ViabilityVeryViable
		}
		all = append(all, CropSuggestion{
			Slug:            profile.Slug,
			Crop:            CropName(profile.Slug),
			CycleDays:       profile.CycleDays,
			HarvestDate:     HarvestDate(sowingDate, profile.CycleDays),
			YieldKg:         yieldKg,
			PriceKg:         profile.PriceKg,
			ProjectedIncome: yieldKg * profile.PriceKg,
			ExpectedRevenue: ExpectedRevenue(quantity, profile.PriceKg),
			Description:     profile.Description,
			Care:            profile.Care,
			InSeason:        inSeason,
			Viability:       viability,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].InSeason != all[j].InSeason {
			return all[i].InSeason
		}
		return all[i].ProjectedIncome > all[j].ProjectedIncome
	})

	if len(all) > suggestionLimit {
		all = all[:suggestionLimit]
	}
	return all
}

// RegionalInSeason returns the three best-paid regional products whose
// optimal months include the sowing month.
func RegionalInSeason(sowingDate time.Time) []RegionalSuggestion {
	month := sowingDate.Month()
	matches := make([]RegionalSuggestion, 0, len(regionalProducts))
	for _, product := range regionalProducts {
		if !slices.Contains(product.OptimalMonths, month) {
			continue
		}
		matches = append(matches, RegionalSuggestion{
			Slug:          product.Slug,
			Name:          product.Name,
			Category:      product.Category,
			PriceKg:       product.PriceKg,
			HarvestDate:   HarvestDate(sowingDate, regionalHarvestDays),
			OptimalTemp:   product.OptimalTemp,
			Precipitation: product.Precipitation,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PriceKg > matches[j].PriceKg
	})
	if len(matches) > suggestionLimit {
		matches = matches[:suggestionLimit]
	}
	return matches
}

func IsRegionalProductInSeason(product RegionalProduct, month time.Month) bool {
	return slices.Contains(product.OptimalMonths, month)
}

func HarvestDate(sowingDate time.Time, cycleDays int) time.Time {
	return sowingDate.AddDate(0, 0, cycleDays)
}

func ExpectedRevenue(quantity float64, priceKg float64) float64 {
	if quantity <= 0 || priceKg <= 0 {
		return 0
	}
	return quantity * priceKg
}
