package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/botcore/internal/dynamo"
)

// Summary condenses a recorded trace for reports and the run store.
type Summary struct {
	Samples      int     `json:"samples"`
	MeanAbsError float64 `json:"mean_abs_error"`
	RMSError     float64 `json:"rms_error"`
	OutputStdDev float64 `json:"output_std_dev"`
	PeakOutput   float64 `json:"peak_output"`
	FinalError   float64 `json:"final_error"`
}

func Summarize(samples []dynamo.Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	absErr := make([]float64, len(samples))
	sqErr := make([]float64, len(samples))
	out := make([]float64, len(samples))
	absOut := make([]float64, len(samples))
	for i, s := range samples {
		e := s.Error()
		absErr[i] = math.Abs(e)
		sqErr[i] = e * e
		out[i] = s.Output
		absOut[i] = math.Abs(s.Output)
	}

	sum := Summary{
		Samples:      len(samples),
		MeanAbsError: stat.Mean(absErr, nil),
		RMSError:     math.Sqrt(stat.Mean(sqErr, nil)),
		PeakOutput:   floats.Max(absOut),
		FinalError:   samples[len(samples)-1].Error(),
	}
	if len(samples) > 1 {
		sum.OutputStdDev = stat.StdDev(out, nil)
	}
	return sum
}
