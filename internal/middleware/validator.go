package middleware

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// AllowedImageExtensions lists the upload extensions the analyzer accepts.
var AllowedImageExtensions = []string{"png", "jpg", "jpeg", "webp"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename strips directories and unsafe characters from an upload name.
func SanitizeFilename(name string) string {
	name = SanitizeString(name)
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "." {
		return ""
	}
	return name
}

// ValidateImageFilename checks the upload has a name with an allowed extension.
func ValidateImageFilename(name string) error {
	if name == "" {
		return fmt.Errorf("no file selected")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid file type (allowed: %s)", strings.Join(AllowedImageExtensions, ", "))
}

// ValidateSolarReading checks production and charge are physically possible.
func ValidateSolarReading(solarW, batteryPct float64) error {
	if math.IsNaN(solarW) || math.IsInf(solarW, 0) || solarW < 0 {
		return fmt.Errorf("solar_production must be a non-negative number")
	}
	if math.IsNaN(batteryPct) || batteryPct < 0 || batteryPct > 100 {
		return fmt.Errorf("battery_percentage must be between 0 and 100")
	}
	return nil
}

// ValidateCapacity accepts 0 (use default) or a positive capacity.
func ValidateCapacity(wh float64) error {
	if math.IsNaN(wh) || math.IsInf(wh, 0) || wh < 0 {
		return fmt.Errorf("battery_capacity must be a positive number")
	}
	return nil
}

// ValidateAppliances checks names are non-empty and power draws positive.
func ValidateAppliances(appliances map[string]float64) error {
	for name, watts := range appliances {
		if SanitizeString(name) == "" {
			return fmt.Errorf("appliance name cannot be empty")
		}
		if len(name) > 64 {
			return fmt.Errorf("appliance name too long: %.20s...", name)
		}
		if math.IsNaN(watts) || watts <= 0 {
			return fmt.Errorf("appliance %q must draw a positive wattage", name)
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateSimulationSize bounds the number of simulation points.
func ValidateSimulationSize(n, limit int) error {
	if n == 0 {
		return fmt.Errorf("no simulation data provided")
	}
	if limit > 0 && n > limit {
		return fmt.Errorf("too many simulation points: %d (max %d)", n, limit)
	}
	return nil
}
