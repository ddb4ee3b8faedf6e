// Package main checks that the embedded content catalog and the assistant's
// documented example phrases are consistent. Run it in CI after editing
// catalog.yaml or the keyword tables.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sisemasexp/portal/internal/assistant"
	"github.com/sisemasexp/portal/internal/content"
)

// Verification results
type verifyResult struct {
	name    string
	passed  bool
	message string
}

func main() {
	fmt.Println("🔍 Portal - Content Consistency Verification Tool")
	fmt.Println("=================================================")

	catalog, err := content.Default()
	if err != nil {
		fmt.Printf("❌ Content catalog: %v\n", err)
		os.Exit(1)
	}

	results := []verifyResult{}
	results = append(results, verifyTexts(catalog)...)
	results = append(results, verifyCityZones(catalog)...)
	results = append(results, verifyExamplePhrases()...)

	fmt.Println("\n📊 Verification Results:")
	fmt.Println("========================")

	passedCount := 0
	failedCount := 0

	for _, result := range results {
		status := "❌"
		if result.passed {
			status = "✅"
			passedCount++
		} else {
			failedCount++
		}
		fmt.Printf("%s %s: %s\n", status, result.name, result.message)
	}

	fmt.Printf("\n📈 Summary: %d passed, %d failed\n", passedCount, failedCount)

	if failedCount > 0 {
		os.Exit(1)
	}
}

// verifyTexts checks the editorial texts rendered on the pages and by the assistant.
func verifyTexts(c *content.Catalog) []verifyResult {
	texts := []struct {
		name  string
		value string
	}{
		{"Institution Name", c.Institution.Name},
		{"Mission Text", c.Mission},
		{"Vision Text", c.Vision},
	}

	results := make([]verifyResult, 0, len(texts))
	for _, tt := range texts {
		results = append(results, verifyResult{
			name:    tt.name,
			passed:  tt.value != "",
			message: fmt.Sprintf("%d characters", len([]rune(tt.value))),
		})
	}
	return results
}

// verifyCityZones loads every configured zone and asks the clock about each city.
func verifyCityZones(c *content.Catalog) []verifyResult {
	results := []verifyResult{}
	clock := assistant.NewClock(c.Cities)

	for _, city := range c.Cities {
		if _, err := time.LoadLocation(city.Zone); err != nil {
			results = append(results, verifyResult{
				name:    "City Zone: " + city.Name,
				passed:  false,
				message: err.Error(),
			})
			continue
		}
		if len(city.Keywords) == 0 {
			results = append(results, verifyResult{
				name:    "City Zone: " + city.Name,
				passed:  false,
				message: "no keywords",
			})
			continue
		}

		answer, ok := clock.Answer("hora en " + city.Keywords[0])
		results = append(results, verifyResult{
			name:    "City Zone: " + city.Name,
			passed:  ok && answer != "" && !strings.HasSuffix(answer, "(hora aproximada)."),
			message: answer,
		})
	}
	return results
}

// verifyExamplePhrases checks that the phrases quoted in the help and
// fallback replies reach the intent they advertise.
func verifyExamplePhrases() []verifyResult {
	examples := []struct {
		phrase string
		want   assistant.Intent
	}{
		{"hola", assistant.IntentGreeting},
		{"gracias", assistant.IntentThanks},
		{"ayuda", assistant.IntentHelp},
		{"lista de programas", assistant.IntentListPrograms},
		{"codigo 2", assistant.IntentLookupByCode},
		{"buscar ingenieria", assistant.IntentSearchByName},
		{"cual es la mision", assistant.IntentMission},
		{"vision", assistant.IntentVision},
		{"que hora es en madrid", assistant.IntentNone},
		{"cuanto es 4 mas 5", assistant.IntentNone},
	}

	results := make([]verifyResult, 0, len(examples)+1)
	for _, ex := range examples {
		got := assistant.Classify(assistant.Normalize(ex.phrase))
		results = append(results, verifyResult{
			name:    fmt.Sprintf("Example Phrase: %q", ex.phrase),
			passed:  got == ex.want,
			message: fmt.Sprintf("Expected %s, got %s", ex.want, got),
		})
	}

	answer, ok := assistant.ExtractArithmetic("cuanto es 4 mas 5")
	results = append(results, verifyResult{
		name:    "Arithmetic Example",
		passed:  ok && answer == "Resultado: 9",
		message: answer,
	})
	return results
}
