package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
)

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"t":             translateMessage,
		"errorText":     localizedError,
		"formatDate":    localizedDate,
		"isoDate":       formatISODate,
		"formatMoney":   formatMoney,
		"formatFloat":   formatTemplateFloat,
		"formatPercent": formatTemplatePercent,
		"cropName":      services.CropName,
		"statusLabel":   templateStatusLabel,
		"viabilityLabel": func(messages map[string]string, viability string) string {
			return translateMessage(messages, viabilityTranslationKey(viability))
		},
		"riskLabel": func(messages map[string]string, risk string) string {
			return translateMessage(messages, riskTranslationKey(risk))
		},
		"seasonLabel": func(messages map[string]string, season services.Season) string {
			return translateMessage(messages, seasonTranslationKey(season))
		},
		"roleLabel": func(messages map[string]string, role string) string {
			return translateMessage(messages, roleTranslationKey(role))
		},
		"chartTitle": func(messages map[string]string, key string) string {
			return translateMessage(messages, "report.chart."+key)
		},
		"isActiveRoute": isActiveTemplateRoute,
		"isAdmin":       templateIsAdmin,
		"barWidth":      templateBarWidth,
		"barY":          templateBarY,
		"chartHeight":   templateChartHeight,
		"upper":         strings.ToUpper,
		"toJSON":        templateToJSON,
		"dict":          templateDict,
	}
}

func formatISODate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format("2006-01-02")
}

// formatMoney renders Colombian pesos with dot thousand separators and no
// decimals, e.g. "$ 1.234.567".
func formatMoney(value float64) string {
	rounded := int64(math.Round(value))
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "$ " + groupThousands(strconv.FormatInt(rounded, 10), ".")
}

func formatTemplateFloat(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', 2, 64)
	formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	integer, fraction, found := strings.Cut(formatted, ".")
	integer = groupThousands(integer, ".")
	if found {
		return integer + "," + fraction
	}
	return integer
}

func formatTemplatePercent(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

func groupThousands(digits string, separator string) string {
	if len(digits) <= 3 {
		return digits
	}
	var builder strings.Builder
	head := len(digits) % 3
	if head > 0 {
		builder.WriteString(digits[:head])
	}
	for index := head; index < len(digits); index += 3 {
		if builder.Len() > 0 {
			builder.WriteString(separator)
		}
		builder.WriteString(digits[index : index+3])
	}
	return builder.String()
}

func templateStatusLabel(messages map[string]string, status string) string {
	return translateMessage(messages, statusTranslationKey(status))
}

func templateIsAdmin(user *models.User) bool {
	return user != nil && user.IsAdmin()
}

func isActiveTemplateRoute(currentPath string, route string) bool {
	path := strings.TrimSpace(currentPath)
	if path == "" {
		return route == "/"
	}
	if route == "/" {
		return path == "/" || strings.HasPrefix(path, "/?")
	}
	return path == route || strings.HasPrefix(path, route+"?") || strings.HasPrefix(path, route+"/")
}

const (
	chartBarHeight = 22
	chartBarGap    = 8
	chartMaxWidth  = 320
)

func templateBarWidth(percent float64) int {
	width := int(math.Round(percent * chartMaxWidth / 100))
	if percent > 0 && width < 2 {
		return 2
	}
	return width
}

func templateBarY(index int) int {
	return index * (chartBarHeight + chartBarGap)
}

func templateChartHeight(bars int) int {
	if bars == 0 {
		return chartBarHeight
	}
	return bars*(chartBarHeight+chartBarGap) - chartBarGap
}

func templateToJSON(value any) template.JS {
	serialized, err := json.Marshal(value)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(serialized)
}

func templateDict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires key-value pairs")
	}
	result := make(map[string]any, len(values)/2)
	for index := 0; index < len(values); index += 2 {
		key, ok := values[index].(string)
		if !ok {
			return nil, fmt.Errorf("dict key at index %d is not a string", index)
		}
		result[key] = values[index+1]
	}
	return result, nil
}
