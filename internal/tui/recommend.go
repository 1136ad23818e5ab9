package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/api"
)

type soilField int

const (
	fieldNitrogen soilField = iota
	fieldPhosphorus
	fieldPotassium
	fieldTemperature
	fieldHumidity
	fieldPH
	fieldRainfall
	numSoilFields
)

var soilFieldKeys = [numSoilFields]string{
	"field.nitrogen",
	"field.phosphorus",
	"field.potassium",
	"field.temperature",
	"field.humidity",
	"field.ph",
	"field.rainfall",
}

// predictDoneMsg carries the model's answer for a submitted sample.
type predictDoneMsg struct {
	pred api.Prediction
	err  error
}

// copiedMsg reports the clipboard write.
type copiedMsg struct{ err error }

type recommendModel struct {
	backend Backend
	fields  [numSoilFields]string
	focus   soilField
	busy    bool
	result  *api.Prediction
	failed  error
	invalid string
	copied  bool
}

func newRecommendModel(b Backend) recommendModel {
	m := recommendModel{backend: b}
	m.prefill(api.DefaultSoilSample())
	return m
}

func (m *recommendModel) prefill(s api.SoilSample) {
	values := [numSoilFields]float64{
		s.Nitrogen, s.Phosphorus, s.Potassium,
		s.Temperature, s.Humidity, s.PH, s.Rainfall,
	}
	for i, v := range values {
		m.fields[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// reset clears a previous run's result while keeping the entered values.
func (m recommendModel) reset() recommendModel {
	m.result = nil
	m.failed = nil
	m.invalid = ""
	m.copied = false
	m.busy = false
	return m
}

func (m recommendModel) Update(msg tea.Msg) (recommendModel, tea.Cmd) {
	switch msg := msg.(type) {
	case predictDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
			return m, nil
		}
		pred := msg.pred
		m.result = &pred
		return m, nil

	case copiedMsg:
		m.copied = msg.err == nil
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.failed = nil
		m.invalid = ""
		m.copied = false

		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % numSoilFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numSoilFields) % numSoilFields
		case "enter":
			return m.submit()
		case "c":
			if m.result != nil {
				crop := m.result.RecommendedCrop
				return m, func() tea.Msg {
					return copiedMsg{err: clipboard.WriteAll(crop)}
				}
			}
		default:
			f := &m.fields[m.focus]
			*f = editNumeric(*f, msg.String())
		}
	}
	return m, nil
}

func (m recommendModel) sample() (api.SoilSample, error) {
	var values [numSoilFields]float64
	for i := soilField(0); i < numSoilFields; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(m.fields[i]), 64)
		if err != nil {
			return api.SoilSample{}, fmt.Errorf("%s is not a number", tr(LangEN, soilFieldKeys[i]))
		}
		values[i] = v
	}
	return api.SoilSample{
		Nitrogen:    values[fieldNitrogen],
		Phosphorus:  values[fieldPhosphorus],
		Potassium:   values[fieldPotassium],
		Temperature: values[fieldTemperature],
		Humidity:    values[fieldHumidity],
		PH:          values[fieldPH],
		Rainfall:    values[fieldRainfall],
	}, nil
}

func (m recommendModel) submit() (recommendModel, tea.Cmd) {
	sample, err := m.sample()
	if err != nil {
		m.invalid = err.Error()
		return m, nil
	}
	if err := sample.Validate(); err != nil {
		m.invalid = err.Error()
		return m, nil
	}

	m.busy = true
	m.result = nil
	b := m.backend
	return m, func() tea.Msg {
		pred, err := b.Predict(context.Background(), sample)
		return predictDoneMsg{pred: pred, err: err}
	}
}

func (m recommendModel) View(t Theme, lang Lang) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n %s\n\n", t.Selected.Render(tr(lang, "recommend.title")))

	for i := soilField(0); i < numSoilFields; i++ {
		cursor := " "
		style := t.Label
		if i == m.focus {
			cursor = ">"
			style = t.Selected
		}
		value := m.fields[i]
		if i == m.focus && !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(tr(lang, soilFieldKeys[i])), t.Value.Render(value))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "recommend.busy")))
	case m.failed != nil:
		fmt.Fprintf(&b, " %s\n", t.Error.Render(errText(lang, m.failed)))
	case m.invalid != "":
		fmt.Fprintf(&b, " %s\n", t.Error.Render(m.invalid))
	case m.result != nil:
		fmt.Fprintf(&b, " %s: %s\n", t.Label.Render(tr(lang, "recommend.result")),
			t.Result.Render(m.result.RecommendedCrop))
		if m.copied {
			fmt.Fprintf(&b, " %s\n", t.Success.Render(tr(lang, "recommend.copied")))
		}
	}

	return b.String()
}
