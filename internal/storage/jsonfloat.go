package storage

import (
	"encoding/json"
	"math"
	"strconv"
)

// encoding/json rejects NaN and Inf, which a diverged run legitimately
// produces. Non-finite values are written as the strings "NaN", "+Inf" and
// "-Inf" and read back from either form.

type Metrics map[string]float64

func (m Metrics) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = encodeFloat(v)
	}
	return json.Marshal(out)
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = make(Metrics, len(raw))
	for k, v := range raw {
		f, err := decodeFloat(v)
		if err != nil {
			return err
		}
		(*m)[k] = f
	}
	return nil
}

type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(s))
	for i, v := range s {
		out[i] = encodeFloat(v)
	}
	return json.Marshal(out)
}

func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = make(Series, len(raw))
	for i, v := range raw {
		f, err := decodeFloat(v)
		if err != nil {
			return err
		}
		(*s)[i] = f
	}
	return nil
}

func encodeFloat(v float64) json.RawMessage {
	switch {
	case math.IsNaN(v):
		return json.RawMessage(`"NaN"`)
	case math.IsInf(v, 1):
		return json.RawMessage(`"+Inf"`)
	case math.IsInf(v, -1):
		return json.RawMessage(`"-Inf"`)
	}
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

func decodeFloat(data json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	err := json.Unmarshal(data, &f)
	return f, err
}
