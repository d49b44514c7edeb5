package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := Record{Name: "France", Capital: "Paris", Population: "67M", Area: "551695"}

	assert.Equal(t, "Country: France, Capital: Paris, Population: 67M, Area: 551695", Render(r))
}

func TestParse_RoundTrip(t *testing.T) {
	records := []Record{
		{Name: "France", Capital: "Paris", Population: "67M", Area: "551695"},
		{Name: "Bosnia and Herzegovina", Capital: "Sarajevo", Population: "4590000", Area: "51129.0"},
		{Name: "Antarctica", Capital: "None", Population: "0", Area: "1.4E7"},
		{},
	}

	for _, r := range records {
		t.Run(r.Name, func(t *testing.T) {
			got, err := Parse(Render(r))
			require.NoError(t, err)
			assert.Equal(t, r, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"no prefix":     "France, Capital: Paris, Population: 1, Area: 2",
		"no capital":    "Country: France, Population: 1, Area: 2",
		"no population": "Country: France, Capital: Paris, Area: 2",
		"no area":       "Country: France, Capital: Paris, Population: 1",
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestDocuments(t *testing.T) {
	records := []Record{
		{Name: "Andorra", Capital: "Andorra la Vella", Population: "84000", Area: "468.0"},
		{Name: "France", Capital: "Paris", Population: "67M", Area: "551695"},
	}

	docs := Documents(records)

	require.Len(t, docs, 2)
	assert.Equal(t, "country_0", docs[0].Id)
	assert.Equal(t, "country_1", docs[1].Id)
	assert.Equal(t, records[1], docs[1].Metadata)
	assert.Contains(t, docs[1].Text, "Capital: Paris")
}

func TestMetadata_RoundTrip(t *testing.T) {
	r := Record{Name: "France", Capital: "Paris", Population: "67M", Area: "551695"}

	assert.Equal(t, r, FromMetadata(r.Metadata()))
	assert.Equal(t, Record{Name: "x"}, FromMetadata(map[string]any{"name": "x", "area": 12.5}))
}
