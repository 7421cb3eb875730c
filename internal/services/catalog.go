package services

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Static agronomic and market data for the Sabana de Occidente. Prices are
// Corabastos wholesale references in COP per kilogram (2024).

const defaultMunicipalityKey = "chia"

// defaultCycleDays applies to crops whose growing cycle is not tabulated.
const defaultCycleDays = 90

type MunicipalityClimate struct {
	Key             string
	Name            string
	AltitudeM       int
	MeanTempC       int
	PrecipitationMM int
}

var municipalityClimates = []MunicipalityClimate{
	{Key: "chia", Name: "Chía", AltitudeM: 2564, MeanTempC: 14, PrecipitationMM: 750},
	{Key: "cajica", Name: "Cajicá", AltitudeM: 2658, MeanTempC: 13, PrecipitationMM: 800},
	{Key: "zipaquira", Name: "Zipaquirá", AltitudeM: 2650, MeanTempC: 13, PrecipitationMM: 780},
	{Key: "facatativa", Name: "Facatativá", AltitudeM: 2586, MeanTempC: 14, PrecipitationMM: 720},
	{Key: "soacha", Name: "Soacha", AltitudeM: 2565, MeanTempC: 14, PrecipitationMM: 700},
}

var corabastosPrices = map[string]float64{
	"maiz":      2800,
	"arroz":     3200,
	"papa":      3000,
	"frijol":    4800,
	"tomate":    3800,
	"cebolla":   2400,
	"zanahoria": 2000,
	"lechuga":   1800,
	"brocoli":   4200,
	"aguacate":  8500,
	"platano":   1500,
	"yuca":      1400,
	"arracacha": 3800,
	"espinaca":  5000,
	"ajo":       5500,
	"chile":     3500,
	"pepino":    2800,
	"rabano":    2200,
}

var cropNames = map[string]string{
	"maiz":      "Maíz",
	"arroz":     "Arroz",
	"papa":      "Papa",
	"frijol":    "Frijol",
	"tomate":    "Tomate",
	"cebolla":   "Cebolla",
	"zanahoria": "Zanahoria",
	"lechuga":   "Lechuga",
	"brocoli":   "Brócoli",
	"coliflor":  "Coliflor",
	"aguacate":  "Aguacate",
	"platano":   "Plátano",
	"yuca":      "Yuca",
	"arracacha": "Arracacha",
	"espinaca":  "Espinaca",
	"ajo":       "Ajo",
	"chile":     "Chile",
	"pepino":    "Pepino",
	"rabano":    "Rábano",
}

var cropCycleDays = map[string]int{
	"maiz":      90,
	"papa":      120,
	"frijol":    75,
	"tomate":    80,
	"cebolla":   110,
	"zanahoria": 90,
	"lechuga":   45,
	"brocoli":   85,
	"yuca":      300,
	"arracacha": 180,
	"ajo":       150,
	"chile":     90,
}

// cropOptimalMonths drives the viability check for a crop the farmer asked
// about. Its key order is the order crops are offered in forms.
var cropOptimalMonths = []struct {
	Slug   string
	Months []time.Month
}{
	{"maiz", months(3, 4, 5, 9, 10, 11)},
	{"arroz", months(4, 5, 6, 10, 11, 12)},
	{"papa", months(1, 2, 3, 7, 8, 9, 10)},
	{"frijol", months(2, 3, 4, 5, 6, 7, 8, 9, 10, 11)},
	{"tomate", months(2, 3, 4, 8, 9, 10, 11)},
	{"cebolla", months(3, 4, 5, 9, 10, 11)},
	{"zanahoria", months(2, 3, 4, 8, 9, 10)},
	{"lechuga", months(2, 3, 4, 5, 9, 10, 11)},
	{"brocoli", months(2, 3, 4, 8, 9, 10)},
	{"coliflor", months(2, 3, 4, 8, 9, 10)},
	{"aguacate", months(3, 4, 5, 9, 10)},
	{"platano", months(3, 4, 5, 6, 9, 10, 11)},
	{"yuca", months(3, 4, 5, 9, 10, 11)},
	{"arracacha", months(2, 3, 4, 8, 9, 10)},
	{"espinaca", months(2, 3, 4, 8, 9, 10)},
}

type CropProfile struct {
	Slug          string
	CycleDays     int
	YieldKgPerHa  float64
	PriceKg       float64
	OptimalMonths []time.Month
	Description   string
	Care          string
}

var cropProfiles = []CropProfile{
	{
		Slug: "maiz", CycleDays: 90, YieldKgPerHa: 8000, PriceKg: 2500,
		OptimalMonths: months(3, 4, 5, 9, 10, 11),
		Description:   "Cereal básico, alta demanda en el mercado local",
		Care:          "Requiere buen drenaje y fertilización nitrogenada",
	},
	{
		Slug: "papa", CycleDays: 120, YieldKgPerHa: 25000, PriceKg: 2800,
		OptimalMonths: months(1, 2, 3, 7, 8, 9, 10),
		Description:   "Tubérculo andino, resistente al frío",
		Care:          "Evitar temperaturas extremas, buena rotación de cultivos",
	},
	{
		Slug: "frijol", CycleDays: 75, YieldKgPerHa: 2500, PriceKg: 4500,
		OptimalMonths: months(2, 3, 4, 5, 6, 7, 8, 9, 10, 11),
		Description:   "Leguminosa de alto valor proteico",
		Care:          "Importante para la fijación de nitrógeno en el suelo",
	},
	{
		Slug: "tomate", CycleDays: 80, YieldKgPerHa: 50000, PriceKg: 3500,
		OptimalMonths: months(2, 3, 4, 8, 9, 10, 11),
		Description:   "Hortaliza muy demandada, buen precio en mercado",
		Care:          "Requiere tutorado y control de plagas frecuente",
	},
	{
		Slug: "cebolla", CycleDays: 110, YieldKgPerHa: 20000, PriceKg: 2200,
		OptimalMonths: months(3, 4, 5, 9, 10, 11),
		Description:   "Condimento esencial en la cocina colombiana",
		Care:          "Necesita suelo bien preparado y riego controlado",
	},
	{
		Slug: "zanahoria", CycleDays: 90, YieldKgPerHa: 30000, PriceKg: 1800,
		OptimalMonths: months(2, 3, 4, 8, 9, 10),
		Description:   "Raíz rica en vitamina A, buena conservación",
		Care:          "Suelo suelto y profundo para buen desarrollo",
	},
	{
		Slug: "lechuga", CycleDays: 45, YieldKgPerHa: 15000, PriceKg: 1500,
		OptimalMonths: months(2, 3, 4, 5, 9, 10, 11),
		Description:   "Hortaliza de ciclo corto, alta rotación",
		Care:          "Riego constante, evitar exceso de calor",
	},
	{
		Slug: "brocoli", CycleDays: 85, YieldKgPerHa: 12000, PriceKg: 4000,
		OptimalMonths: months(2, 3, 4, 8, 9, 10),
		Description:   "Vegetal de alto valor nutricional",
		Care:          "Prefiere clima templado, buen manejo de plagas",
	},
}

type Season string

const (
	SeasonDryWinter   Season = "dry_winter"
	SeasonSpring      Season = "spring"
	SeasonRainySummer Season = "rainy_summer"
	SeasonAutumn      Season = "autumn"
)

type bundleEntry struct {
	Slug    string
	YieldKg float64
	Reason  func(place string, climate MunicipalityClimate) string
	Care    string
}

var seasonalBundles = map[Season][]bundleEntry{
	SeasonDryWinter: {
		{
			Slug: "papa", YieldKg: 2500,
			Reason: func(place string, climate MunicipalityClimate) string {
				return "Excelente para " + place + " en invierno seco. Temperatura ideal de " + strconv.Itoa(climate.MeanTempC) + "°C"
			},
			Care: "Evitar heladas, usar abonos orgánicos, rotación de cultivos",
		},
		{
			Slug: "brocoli", YieldKg: 1200,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Prefiere clima fresco de " + place + ". Alta demanda en Corabastos"
			},
			Care: "Control de plagas, riego moderado, cosecha temprana",
		},
		{
			Slug: "zanahoria", YieldKg: 3000,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Raíz perfecta para suelos de " + place + ". Precio estable en Corabastos"
			},
			Care: "Suelo suelto profundo, evitar exceso de agua",
		},
	},
	SeasonSpring: {
		{
			Slug: "maiz", YieldKg: 800,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Época ideal para maíz en " + place + ". Alta demanda para arepas y tortillas"
			},
			Care: "Siembra en surcos, fertilización nitrogenada, control de malezas",
		},
		{
			Slug: "frijol", YieldKg: 250,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Leguminosa perfecta para rotación en " + place + ". Fija nitrógeno en el suelo"
			},
			Care: "Siembra en hileras, control de plagas, cosecha cuando vainas estén secas",
		},
		{
			Slug: "tomate", YieldKg: 5000,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Excelente precio en Corabastos para " + place + ". Alta rotación de mercado"
			},
			Care: "Tutorado obligatorio, control de plagas, cosecha escalonada",
		},
	},
	SeasonRainySummer: {
		{
			Slug: "yuca", YieldKg: 1500,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Resistente a lluvias en " + place + ". Cultivo seguro para época húmeda"
			},
			Care: "Drenaje adecuado, control de malezas, cosecha cuando hojas amarilleen",
		},
		{
			Slug: "arracacha", YieldKg: 2000,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Raíz andina perfecta para " + place + ". Precio premium en Corabastos"
			},
			Care: "Suelo bien trabajado, fertilización orgánica, cosecha manual",
		},
		{
			Slug: "lechuga", YieldKg: 1500,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Ciclo corto ideal para " + place + ". Múltiples cosechas por año"
			},
			Care: "Riego controlado, sombra parcial, cosecha temprana",
		},
	},
	SeasonAutumn: {
		{
			Slug: "cebolla", YieldKg: 2000,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Época seca ideal para cebolla en " + place + ". Almacenamiento prolongado"
			},
			Care: "Siembra en surcos, riego moderado, curado post-cosecha",
		},
		{
			Slug: "ajo", YieldKg: 800,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Excelente precio en Corabastos para " + place + ". Cultivo de alto valor"
			},
			Care: "Suelo bien drenado, fertilización fosforada, curado adecuado",
		},
		{
			Slug: "chile", YieldKg: 1500,
			Reason: func(place string, _ MunicipalityClimate) string {
				return "Condimento esencial en " + place + ". Demanda constante en Corabastos"
			},
			Care: "Siembra en hileras, tutorado, cosecha escalonada",
		},
	},
}

type RegionalProduct struct {
	Slug          string
	Name          string
	Category      string
	PriceKg       float64
	OptimalMonths []time.Month
	OptimalTemp   string
	Precipitation string
}

var regionalProducts = []RegionalProduct{
	{"papa_sabanera", "Papa Sabanera", "tuberculo", 3000, months(1, 2, 3, 7, 8, 9, 10), "10-18°C", "600-800mm"},
	{"papa_pastusa", "Papa Pastusa", "tuberculo", 2800, months(1, 2, 3, 7, 8, 9, 10), "10-18°C", "600-800mm"},
	{"papa_suprema", "Papa Suprema", "tuberculo", 3200, months(1, 2, 3, 7, 8, 9, 10), "10-18°C", "600-800mm"},
	{"papa_r12", "Papa R12", "tuberculo", 2600, months(1, 2, 3, 7, 8, 9, 10), "10-18°C", "600-800mm"},
	{"arveja_verde_sabanera", "Arveja Verde Sabanera", "legumbre", 4500, months(2, 3, 4, 5, 9, 10, 11), "15-25°C", "800-1200mm"},
	{"haba_verde_sabanera", "Haba Verde Sabanera", "legumbre", 4200, months(2, 3, 4, 5, 9, 10, 11), "15-25°C", "800-1200mm"},
	{"zanahoria", "Zanahoria", "verdura", 2000, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"cebolla_cabezona_blanca", "Cebolla Cabezona Blanca", "verdura", 2400, months(3, 4, 5, 9, 10, 11), "15-25°C", "600-800mm"},
	{"cebolla_cabezona_roja", "Cebolla Cabezona Roja", "verdura", 2200, months(3, 4, 5, 9, 10, 11), "15-25°C", "600-800mm"},
	{"cebolla_larga", "Cebolla Larga", "verdura", 2000, months(3, 4, 5, 9, 10, 11), "15-25°C", "600-800mm"},
	{"maiz_duro_blanco", "Maíz Duro Blanco", "cereal", 2800, months(3, 4, 5, 9, 10, 11), "20-30°C", "600-800mm"},
	{"maiz_duro_amarillo", "Maíz Duro Amarillo", "cereal", 2600, months(3, 4, 5, 9, 10, 11), "20-30°C", "600-800mm"},
	{"repollo", "Repollo", "hortaliza", 1800, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"remolacha", "Remolacha", "hortaliza", 1500, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"habichuela", "Habichuela", "hortaliza", 3500, months(2, 3, 4, 5, 9, 10, 11), "18-25°C", "800-1000mm"},
	{"lechuga", "Lechuga", "hortaliza", 1800, months(2, 3, 4, 5, 9, 10, 11), "15-20°C", "600-800mm"},
	{"espinaca", "Espinaca", "hortaliza", 5000, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"acelga", "Acelga", "hortaliza", 2000, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"brocoli", "Brócoli", "hortaliza", 4200, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
	{"coliflor", "Coliflor", "hortaliza", 3800, months(2, 3, 4, 8, 9, 10), "15-20°C", "600-800mm"},
}

type CropOption struct {
	Slug string
	Name string
}

// SelectableCrops lists the crops a farmer can ask about directly.
func SelectableCrops() []CropOption {
	options := make([]CropOption, 0, len(cropOptimalMonths))
	for _, entry := range cropOptimalMonths {
		options = append(options, CropOption{Slug: entry.Slug, Name: CropName(entry.Slug)})
	}
	return options
}

func Municipalities() []MunicipalityClimate {
	return append([]MunicipalityClimate(nil), municipalityClimates...)
}

func RegionalProducts() []RegionalProduct {
	return append([]RegionalProduct(nil), regionalProducts...)
}

// LookupMunicipality matches case- and accent-insensitively, so "ZIPAQUIRA"
// and "Zipaquirá" resolve to the same entry.
func LookupMunicipality(raw string) (MunicipalityClimate, bool) {
	key := FoldKey(raw)
	for _, climate := range municipalityClimates {
		if climate.Key == key {
			return climate, true
		}
	}
	return MunicipalityClimate{}, false
}

// ClimateForMunicipality falls back to Chía for places outside the table.
func ClimateForMunicipality(raw string) MunicipalityClimate {
	if climate, ok := LookupMunicipality(raw); ok {
		return climate
	}
	fallback, _ := LookupMunicipality(defaultMunicipalityKey)
	return fallback
}

// CanonicalMunicipality returns the catalog spelling for known places and the
// trimmed input otherwise.
func CanonicalMunicipality(raw string) string {
	if climate, ok := LookupMunicipality(raw); ok {
		return climate.Name
	}
	return strings.Join(strings.Fields(raw), " ")
}

func LookupCropSlug(raw string) (string, bool) {
	key := FoldKey(raw)
	for _, entry := range cropOptimalMonths {
		if entry.Slug == key {
			return entry.Slug, true
		}
	}
	return "", false
}

func CropName(slug string) string {
	if name, ok := cropNames[slug]; ok {
		return name
	}
	return slug
}

func CropCycleDays(slug string) int {
	if days, ok := cropCycleDays[slug]; ok {
		return days
	}
	return defaultCycleDays
}

func CorabastosPrice(slug string) (float64, bool) {
	price, ok := corabastosPrices[slug]
	return price, ok
}

func CropOptimalMonths(slug string) []time.Month {
	for _, entry := range cropOptimalMonths {
		if entry.Slug == slug {
			return entry.Months
		}
	}
	return nil
}

func CropProfiles() []CropProfile {
	return append([]CropProfile(nil), cropProfiles...)
}

func findCropProfile(slug string) (CropProfile, bool) {
	for _, profile := range cropProfiles {
		if profile.Slug == slug {
			return profile, true
		}
	}
	return CropProfile{}, false
}

// FoldKey lowercases, trims, strips diacritics and joins words with '_'.
// transform.Chain keeps internal buffers, so each call builds its own chain.
func FoldKey(raw string) string {
	accentFolder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(accentFolder, strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.Join(strings.Fields(folded), "_")
}

func months(values ...int) []time.Month {
	result := make([]time.Month, 0, len(values))
	for _, value := range values {
		result = append(result, time.Month(value))
	}
	return result
}
