package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// automationEngine drives an installed PowerPoint application through its
// COM interface via PowerShell. It reaches text the package XML hides
// behind SmartArt, WordArt and embedded objects, but it only exists on
// Windows hosts with Office present. Results carry slide/shape locators
// and are used for extraction only; write-back always goes through the
// package splicer.
type automationEngine struct {
	timeout time.Duration
}

func newAutomationEngine() *automationEngine {
	return &automationEngine{timeout: 2 * time.Minute}
}

func (e *automationEngine) Name() string { return "automation" }

// Available reports whether a PowerShell-driven PowerPoint instance can be
// attempted at all. Office presence is only discovered when the script
// runs; failure there degrades to the next engine.
func (e *automationEngine) Available() bool {
	if runtime.GOOS != "windows" {
		return false
	}
	_, err := exec.LookPath("powershell")
	return err == nil
}

// automationText is one shape's text as reported by the script.
type automationText struct {
	Slide int    `json:"slide"`
	Shape int    `json:"shape"`
	Text  string `json:"text"`
}

// extractScript walks slides, shapes (including group members) and notes
// and emits one JSON array on stdout.
const extractScript = `
$ErrorActionPreference = 'Stop'
$app = New-Object -ComObject PowerPoint.Application
$pres = $app.Presentations.Open($env:PPTX_PATH, $true, $false, $false)
$items = @()
function Walk-Shape($shape, $slideIndex, $shapeIndex) {
    if ($shape.Type -eq 6) {
        $child = 0
        foreach ($inner in $shape.GroupItems) {
            $child++
            Walk-Shape $inner $slideIndex ($shapeIndex * 1000 + $child)
        }
        return
    }
    if ($shape.HasTextFrame -and $shape.TextFrame.HasText) {
        $script:items += @{ slide = $slideIndex; shape = $shapeIndex; text = $shape.TextFrame.TextRange.Text }
    }
}
foreach ($slide in $pres.Slides) {
    $i = 0
    foreach ($shape in $slide.Shapes) {
        $i++
        Walk-Shape $shape $slide.SlideIndex $i
    }
    if ($slide.HasNotesPage) {
        foreach ($shape in $slide.NotesPage.Shapes) {
            if ($shape.HasTextFrame -and $shape.TextFrame.HasText) {
                $i++
                $script:items += @{ slide = $slide.SlideIndex; shape = $i; text = $shape.TextFrame.TextRange.Text }
            }
        }
    }
}
$pres.Close()
$app.Quit()
ConvertTo-Json -InputObject @($items) -Compress
`

func (e *automationEngine) Extract(path string, _ *Package, log *zap.Logger) ([]TextUnit, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", extractScript)
	cmd.Env = append(os.Environ(), "PPTX_PATH="+absPath)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("powerpoint automation failed: %w", err)
	}

	var items []automationText
	if err := json.Unmarshal(output, &items); err != nil {
		return nil, fmt.Errorf("unexpected automation output: %w", err)
	}

	var units []TextUnit
	for _, item := range items {
		if !ShouldTranslate(item.Text) {
			continue
		}
		units = append(units, TextUnit{
			Text: item.Text,
			Loc: Locator{
				Slide: item.Slide,
				Shape: item.Shape,
				Kind:  "automation",
			},
		})
	}

	log.Debug("automation extraction complete", zap.Int("units", len(units)))
	return units, nil
}
