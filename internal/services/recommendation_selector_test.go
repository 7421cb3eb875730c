package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
)

func sowingDate(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 0, 0, 0, 0, time.UTC)
}

func suggestionNames(suggestions []CropSuggestion) []string {
	names := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		names = append(names, suggestion.Crop)
	}
	return names
}

func TestSeasonForMonthCoversTheYear(t *testing.T) {
	expected := map[time.Month]Season{
		time.January:   SeasonDryWinter,
		time.February:  SeasonDryWinter,
		time.March:     SeasonSpring,
		time.April:     SeasonSpring,
		time.May:       SeasonSpring,
		time.June:      SeasonRainySummer,
		time.July:      SeasonRainySummer,
		time.August:    SeasonRainySummer,
		time.September: SeasonAutumn,
		time.October:   SeasonAutumn,
		time.November:  SeasonAutumn,
		time.December:  SeasonDryWinter,
	}
	for month, season := range expected {
		if got := SeasonForMonth(month); got != season {
			t.Fatalf("SeasonForMonth(%s) = %q, want %q", month, got, season)
		}
	}
}

func TestRecommendForMunicipalityReturnsSeasonBundleForEveryMonth(t *testing.T) {
	bundles := map[time.Month][]string{
		time.December:  {"Papa", "Brócoli", "Zanahoria"},
		time.January:   {"Papa", "Brócoli", "Zanahoria"},
		time.February:  {"Papa", "Brócoli", "Zanahoria"},
		time.March:     {"Maíz", "Frijol", "Tomate"},
		time.April:     {"Maíz", "Frijol", "Tomate"},
		time.May:       {"Maíz", "Frijol", "Tomate"},
		time.June:      {"Yuca", "Arracacha", "Lechuga"},
		time.July:      {"Yuca", "Arracacha", "Lechuga"},
		time.August:    {"Yuca", "Arracacha", "Lechuga"},
		time.September: {"Cebolla", "Ajo", "Chile"},
		time.October:   {"Cebolla", "Ajo", "Chile"},
		time.November:  {"Cebolla", "Ajo", "Chile"},
	}

	for month, expected := range bundles {
		recommendation := RecommendForMunicipality("Chía", sowingDate(month, 15), 0)
		if got := suggestionNames(recommendation.Suggestions); !reflect.DeepEqual(got, expected) {
			t.Fatalf("month %s: got %v, want %v", month, got, expected)
		}
		if recommendation.Viability != models.ViabilityVeryViable {
			t.Fatalf("month %s: expected very viable bundle, got %q", month, recommendation.Viability)
		}
	}
}

func TestRecommendForMunicipalityHarvestDatesUseCropCycle(t *testing.T) {
	cycles := map[string]int{
		"Papa": 120, "Brócoli": 85, "Zanahoria": 90,
		"Maíz": 90, "Frijol": 75, "Tomate": 80,
		"Yuca": 300, "Arracacha": 180, "Lechuga": 45,
		"Cebolla": 110, "Ajo": 150, "Chile": 90,
	}

	for _, month := range []time.Month{time.January, time.April, time.July, time.October} {
		sowing := sowingDate(month, 10)
		recommendation := RecommendForMunicipality("Cajicá", sowing, 0)
		for _, suggestion := range recommendation.Suggestions {
			days, ok := cycles[suggestion.Crop]
			if !ok {
				t.Fatalf("unexpected crop %q", suggestion.Crop)
			}
			if want := sowing.AddDate(0, 0, days); !suggestion.HarvestDate.Equal(want) {
				t.Fatalf("%s: harvest %s, want %s", suggestion.Crop, suggestion.HarvestDate, want)
			}
			if suggestion.CycleDays != days {
				t.Fatalf("%s: cycle %d, want %d", suggestion.Crop, suggestion.CycleDays, days)
			}
		}
		if !recommendation.HarvestDate.Equal(recommendation.Suggestions[0].HarvestDate) {
			t.Fatalf("expected request harvest date to follow the first suggestion")
		}
	}
}

func TestRecommendForMunicipalityIncomeAndReason(t *testing.T) {
	recommendation := RecommendForMunicipality("  ZIPAQUIRA ", sowingDate(time.January, 5), 10)
	papa := recommendation.Suggestions[0]

	if recommendation.Municipality != "Zipaquirá" {
		t.Fatalf("expected canonical municipality, got %q", recommendation.Municipality)
	}
	if papa.PriceKg != 3000 || papa.YieldKg != 2500 || papa.ProjectedIncome != 7500000 {
		t.Fatalf("unexpected papa figures: %+v", papa)
	}
	if papa.ExpectedRevenue != 30000 {
		t.Fatalf("expected revenue 10kg*3000, got %v", papa.ExpectedRevenue)
	}
	if papa.Reason != "Excelente para Zipaquirá en invierno seco. Temperatura ideal de 13°C" {
		t.Fatalf("unexpected reason: %q", papa.Reason)
	}
}

func TestRecommendForMunicipalityUnknownPlaceUsesChiaClimate(t *testing.T) {
	recommendation := RecommendForMunicipality("Madrid", sowingDate(time.February, 1), 0)
	if recommendation.Municipality != "Madrid" {
		t.Fatalf("expected free-text municipality to be kept, got %q", recommendation.Municipality)
	}
	if want := "Excelente para Madrid en invierno seco. Temperatura ideal de 14°C"; recommendation.Suggestions[0].Reason != want {
		t.Fatalf("unexpected reason: %q", recommendation.Suggestions[0].Reason)
	}
}

func TestRankCropProfilesOrdersInSeasonByIncome(t *testing.T) {
	got := suggestionNames(RankCropProfiles(sowingDate(time.March, 1), 0))
	if want := []string{"Tomate", "Papa", "Zanahoria"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("march ranking %v, want %v", got, want)
	}
}

func TestRankCropProfilesFillsWithBestRemaining(t *testing.T) {
	cases := []struct {
		month time.Month
		want  []string
	}{
		{month: time.January, want: []string{"Papa", "Tomate", "Zanahoria"}},
		{month: time.June, want: []string{"Frijol", "Tomate", "Papa"}},
		{month: time.July, want: []string{"Papa", "Frijol", "Tomate"}},
		{month: time.December, want: []string{"Tomate", "Papa", "Zanahoria"}},
	}

	for _, testCase := range cases {
		suggestions := RankCropProfiles(sowingDate(testCase.month, 1), 0)
		if got := suggestionNames(suggestions); !reflect.DeepEqual(got, testCase.want) {
			t.Fatalf("%s ranking %v, want %v", testCase.month, got, testCase.want)
		}
	}

	december := RankCropProfiles(sowingDate(time.December, 1), 0)
	for _, suggestion := range december {
		if suggestion.InSeason || suggestion.Viability != models.ViabilityViableWithCare {
			t.Fatalf("expected december fillers to be out of season, got %+v", suggestion)
		}
	}
}

func TestRankCropProfilesProjectedIncome(t *testing.T) {
	suggestions := RankCropProfiles(sowingDate(time.March, 1), 0)
	tomate := suggestions[0]
	if tomate.YieldKg != 5000 || tomate.ProjectedIncome != 17500000 {
		t.Fatalf("unexpected tomate projection: %+v", tomate)
	}
	if want := sowingDate(time.March, 1).AddDate(0, 0, 80); !tomate.HarvestDate.Equal(want) {
		t.Fatalf("unexpected tomate harvest: %s", tomate.HarvestDate)
	}
}

func TestAnalyzeCropViability(t *testing.T) {
	optimal := AnalyzeCrop("papa", sowingDate(time.August, 1), 100)
	if !optimal.Optimal || optimal.Risk != RiskLow || optimal.Viability != models.ViabilityVeryViable {
		t.Fatalf("expected optimal papa in august, got %+v", optimal)
	}
	if optimal.ExpectedRevenue != 300000 {
		t.Fatalf("expected revenue 100kg*3000, got %v", optimal.ExpectedRevenue)
	}

	offSeason := AnalyzeCrop("maiz", sowingDate(time.July, 1), 0)
	if offSeason.Optimal || offSeason.Risk != RiskModerate || offSeason.Viability != models.ViabilityViableWithCare {
		t.Fatalf("expected moderate risk for maiz in july, got %+v", offSeason)
	}
}

func TestRecommendForCropUsesRequestedCropHarvest(t *testing.T) {
	sowing := sowingDate(time.September, 20)
	recommendation := RecommendForCrop("cebolla", sowing, 50)

	if recommendation.Mode != RecommendationModeCrop || recommendation.Crop != "Cebolla" {
		t.Fatalf("unexpected recommendation header: %+v", recommendation)
	}
	if want := sowing.AddDate(0, 0, 110); !recommendation.HarvestDate.Equal(want) {
		t.Fatalf("harvest %s, want %s", recommendation.HarvestDate, want)
	}
	if len(recommendation.Suggestions) != 3 || len(recommendation.Regional) != 3 {
		t.Fatalf("expected three suggestions and three regional products, got %d/%d", len(recommendation.Suggestions), len(recommendation.Regional))
	}
}

func TestRecommendForCropWithoutTabulatedCycleUsesDefault(t *testing.T) {
	sowing := sowingDate(time.April, 1)
	recommendation := RecommendForCrop("aguacate", sowing, 0)
	if want := sowing.AddDate(0, 0, defaultCycleDays); !recommendation.HarvestDate.Equal(want) {
		t.Fatalf("harvest %s, want %s", recommendation.HarvestDate, want)
	}
}

func TestRegionalInSeasonTopThreeByPrice(t *testing.T) {
	regional := RegionalInSeason(sowingDate(time.January, 1))
	names := make([]string, 0, len(regional))
	for _, product := range regional {
		names = append(names, product.Name)
	}
	if want := []string{"Papa Suprema", "Papa Sabanera", "Papa Pastusa"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("january regional %v, want %v", names, want)
	}

	march := RegionalInSeason(sowingDate(time.March, 1))
	if march[0].Name != "Espinaca" || march[0].PriceKg != 5000 {
		t.Fatalf("expected espinaca to lead march, got %+v", march[0])
	}
	if want := sowingDate(time.March, 1).AddDate(0, 0, 90); !march[0].HarvestDate.Equal(want) {
		t.Fatalf("expected 90 day regional harvest, got %s", march[0].HarvestDate)
	}
}

func TestRegionalInSeasonEmptyInDecember(t *testing.T) {
	if regional := RegionalInSeason(sowingDate(time.December, 1)); len(regional) != 0 {
		t.Fatalf("expected no regional products in december, got %+v", regional)
	}
}

func TestExpectedRevenue(t *testing.T) {
	if got := ExpectedRevenue(12.5, 2000); got != 25000 {
		t.Fatalf("ExpectedRevenue = %v, want 25000", got)
	}
	if got := ExpectedRevenue(0, 2000); got != 0 {
		t.Fatalf("ExpectedRevenue with no quantity = %v, want 0", got)
	}
}
