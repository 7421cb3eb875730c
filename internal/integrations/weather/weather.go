package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultBaseURL  = "https://api.openweathermap.org/data/2.5/weather"
	DefaultLanguage = "es"
	UnavailableText = "Datos de clima no disponibles"
	errorTextPrefix = "Error al obtener clima: "
	requestTimeout  = 10 * time.Second
)

// Sabana de Occidente reference point.
const (
	DefaultLatitude  = 4.8167
	DefaultLongitude = -74.3667
)

var (
	ErrAPIKeyMissing = errors.New("OPENWEATHER_API_KEY is not configured")
	errFieldsMissing = errors.New("weather response is missing fields")
)

type Config struct {
	APIKey    string
	Language  string
	BaseURL   string
	Latitude  float64
	Longitude float64
}

// Conditions is the subset of the current-weather payload shown to farmers.
type Conditions struct {
	Description string
	TempC       float64
	Humidity    int
}

type currentWeatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
}

type Client struct {
	config Config
	client *http.Client
}

func NewClient(config Config) *Client {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(config.Language) == "" {
		config.Language = DefaultLanguage
	}
	if config.Latitude == 0 && config.Longitude == 0 {
		config.Latitude = DefaultLatitude
		config.Longitude = DefaultLongitude
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Current performs one GET against the current-weather endpoint. There is no
// retry.
func (c *Client) Current(ctx context.Context) (Conditions, error) {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return Conditions{}, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.config.Latitude, 'f', 4, 64))
	params.Set("lon", strconv.FormatFloat(c.config.Longitude, 'f', 4, 64))
	params.Set("appid", c.config.APIKey)
	params.Set("units", "metric")
	params.Set("lang", c.config.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("failed to make request: %w", redactAPIKey(err, c.config.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Conditions{}, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Conditions{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload.Weather) == 0 || payload.Main == nil || payload.Main.Temp == nil || payload.Main.Humidity == nil {
		return Conditions{}, errFieldsMissing
	}

	return Conditions{
		Description: payload.Weather[0].Description,
		TempC:       *payload.Main.Temp,
		Humidity:    *payload.Main.Humidity,
	}, nil
}

// Snapshot renders current conditions as display text and folds every
// failure into a descriptive string.
func (c *Client) Snapshot(ctx context.Context) string {
	conditions, err := c.Current(ctx)
	if err != nil {
		if errors.Is(err, errFieldsMissing) {
			return UnavailableText
		}
		log.Printf("weather lookup failed: %v", err)
		return errorTextPrefix + err.Error()
	}
	return FormatConditions(conditions)
}

func FormatConditions(conditions Conditions) string {
	return fmt.Sprintf("%s, %s°C, Humedad: %d%%",
		capitalize(conditions.Description),
		strconv.FormatFloat(conditions.TempC, 'f', -1, 64),
		conditions.Humidity,
	)
}

func capitalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + strings.ToLower(value[size:])
}

// redactAPIKey keeps the key out of logs and user-visible error text; url
// errors embed the full request URL.
func redactAPIKey(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, apiKey, "REDACTED")
	}
	return err
}
