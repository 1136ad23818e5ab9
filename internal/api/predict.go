package api

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// SoilSample is the set of soil and climate parameters the recommendation
// model scores.
type SoilSample struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Validate checks the sample against the model's accepted input ranges.
func (s SoilSample) Validate() error {
	switch {
	case s.Nitrogen < 0:
		return fmt.Errorf("nitrogen must be positive")
	case s.Phosphorus < 0:
		return fmt.Errorf("phosphorus must be positive")
	case s.Potassium < 0:
		return fmt.Errorf("potassium must be positive")
	case s.Temperature < -50 || s.Temperature > 60:
		return fmt.Errorf("temperature must be between -50 and 60")
	case s.Humidity < 0 || s.Humidity > 100:
		return fmt.Errorf("humidity must be between 0 and 100")
	case s.PH < 0 || s.PH > 14:
		return fmt.Errorf("ph must be between 0 and 14")
	case s.Rainfall < 0:
		return fmt.Errorf("rainfall must be positive")
	}
	return nil
}

// DefaultSoilSample pre-fills the recommendation form with a representative
// sample, matching the defaults the web form shipped with.
func DefaultSoilSample() SoilSample {
	return SoilSample{
		Nitrogen:    101,
		Phosphorus:  31,
		Potassium:   26,
		Temperature: 26.7,
		Humidity:    69.7,
		PH:          6.8,
		Rainfall:    158.8,
	}
}

// Prediction is the model's crop recommendation for a sample.
type Prediction struct {
	RecommendedCrop string `json:"recommended_crop"`
}

// Predict submits a soil sample to the remote prediction endpoint.
func (c *Client) Predict(ctx context.Context, sample SoilSample) (Prediction, error) {
	if err := sample.Validate(); err != nil {
		return Prediction{}, err
	}

	var result Prediction
	_, err := c.doAuthed(ctx, func(token string) (*resty.Response, error) {
		return c.httpClient.R().
			SetContext(ctx).
			SetHeader("Authorization", bearer(token)).
			SetBody(sample).
			SetResult(&result).
			Post("/predict/")
	})
	return result, err
}
