package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleveque/stylist-service/internal/model"
)

func TestSanitize_RelevanceScoreClamping(t *testing.T) {
	tests := []struct {
		name  string
		score string // raw JSON, "" means the field is absent
		want  float64
	}{
		{"negative", `-1`, 0},
		{"zero", `0`, 0},
		{"midpoint", `0.5`, 0.5},
		{"one", `1`, 1},
		{"above range", `2`, 1},
		{"non-numeric string", `"abc"`, 0.5},
		{"absent", ``, 0.5},
		{"null", `null`, 0.5},
		{"numeric string", `"0.8"`, 0.8},
		{"boolean", `true`, 0.5},
		{"huge number", `1e400`, 1},
		{"NaN string", `"NaN"`, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elem := `{"title":"x"}`
			if tt.score != "" {
				elem = `{"title":"x","relevanceScore":` + tt.score + `}`
			}

			products, err := Sanitize(json.RawMessage("[" + elem + "]"))
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, tt.want, products[0].RelevanceScore)
		})
	}
}

func TestSanitize_PreservesLengthAndInvariants(t *testing.T) {
	raw := json.RawMessage(`[
		{"title":"Slim jeans","imageUrl":"https://shop.example/a.jpg","productUrl":"https://shop.example/a","price":"€49,99","description":"Blue denim","relevanceScore":0.9},
		{"title":"","imageUrl":"not a url","productUrl":"ftp://shop.example/b"},
		{"imageUrl":42,"title":["array"],"price":12.5},
		"just a string",
		null,
		7,
		{"extra":"ignored","relevanceScore":"0.3"}
	]`)

	products, err := Sanitize(raw)
	require.NoError(t, err)
	require.Len(t, products, 7, "sanitizing must never drop an element")

	for i, p := range products {
		assert.GreaterOrEqual(t, p.RelevanceScore, 0.0, "product %d", i)
		assert.LessOrEqual(t, p.RelevanceScore, 1.0, "product %d", i)
		assert.NotEmpty(t, p.Description, "product %d", i)
		assert.NotEmpty(t, p.Price, "product %d", i)
		for _, u := range []string{p.ImageURL, p.ProductURL} {
			if u != "" {
				assert.True(t, isAbsoluteHTTPURL(u), "product %d url %q", i, u)
			}
		}
	}

	assert.Equal(t, model.Product{
		ImageURL:       "https://shop.example/a.jpg",
		Title:          "Slim jeans",
		Description:    "Blue denim",
		Price:          "€49,99",
		ProductURL:     "https://shop.example/a",
		RelevanceScore: 0.9,
	}, products[0])

	assert.Equal(t, "", products[1].Title, "an empty title is a value, not a missing field")
	assert.Equal(t, model.DefaultDescription, products[1].Description)
	assert.Empty(t, products[1].ImageURL)
	assert.Empty(t, products[1].ProductURL)

	assert.Equal(t, model.DefaultTitle, products[2].Title)
	assert.Equal(t, model.DefaultPrice, products[2].Price)
	assert.Empty(t, products[2].ImageURL)

	fragment := model.Product{
		Title:          model.DefaultTitle,
		Description:    model.DefaultDescription,
		Price:          model.DefaultPrice,
		RelevanceScore: model.DefaultRelevanceScore,
	}
	assert.Equal(t, fragment, products[3])
	assert.Equal(t, fragment, products[4])
	assert.Equal(t, fragment, products[5])

	assert.Equal(t, 0.3, products[6].RelevanceScore)
}

func TestSanitize_TrimsURLs(t *testing.T) {
	products, err := Sanitize(json.RawMessage(`[{"imageUrl":"  https://shop.example/a.jpg\n","productUrl":"http://shop.example/a"}]`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "https://shop.example/a.jpg", products[0].ImageURL)
	assert.Equal(t, "http://shop.example/a", products[0].ProductURL)
}

func TestSanitize_Idempotent(t *testing.T) {
	valid := []model.Product{
		{
			ImageURL:       "https://shop.example/a.jpg",
			Title:          "Wide leg jeans",
			Description:    "High waist",
			Price:          "€59,99",
			ProductURL:     "https://shop.example/a",
			RelevanceScore: 0.75,
		},
		{
			Title:          model.DefaultTitle,
			Description:    model.DefaultDescription,
			Price:          model.DefaultPrice,
			RelevanceScore: 0,
		},
		{
			ImageURL:       "https://shop.example/b.jpg",
			Title:          "Jeans",
			Description:    "",
			Price:          "",
			ProductURL:     "https://shop.example/b",
			RelevanceScore: 1,
		},
		{
			ImageURL:       "https://shop.example/c.jpg",
			Title:          "",
			Description:    "Relaxed fit",
			Price:          "€39",
			ProductURL:     "https://shop.example/c",
			RelevanceScore: 0.5,
		},
	}

	raw, err := json.Marshal(valid)
	require.NoError(t, err)

	once, err := Sanitize(raw)
	require.NoError(t, err)
	assert.Equal(t, valid, once)

	twice, err := json.Marshal(once)
	require.NoError(t, err)
	again, err := Sanitize(twice)
	require.NoError(t, err)
	assert.Equal(t, once, again)
}

func TestSanitize_EmptyTitleStaysDisplayable(t *testing.T) {
	products, err := Sanitize(json.RawMessage(`[{"title":"","imageUrl":"https://shop.example/a.jpg","productUrl":"https://shop.example/a"}]`))
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, "", products[0].Title)
	assert.Equal(t, model.DefaultDescription, products[0].Description)
	assert.Equal(t, model.DefaultPrice, products[0].Price)
	assert.Equal(t, products, FilterDisplayable(products))
}

func TestSanitize_WholeInput(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantLen    int
		structural bool
	}{
		{"empty array", `[]`, 0, false},
		{"null", `null`, 0, false},
		{"no payload", ``, 0, false},
		{"object", `{"products":[]}`, 0, true},
		{"string", `"no products"`, 0, true},
		{"number", `42`, 0, true},
		{"truncated array", `[{"title":"x"`, 0, true},
		{"truncated tool arguments", `{"products":[{"title":"x"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := Sanitize(json.RawMessage(tt.raw))
			if tt.structural {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrStructural)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, products)
			assert.Len(t, products, tt.wantLen)
		})
	}
}

func TestDescribeIssues(t *testing.T) {
	assert.Empty(t, DescribeIssues(json.RawMessage(`[]`)))

	valid := `[{"imageUrl":"https://a/b.jpg","title":"t","description":"d","price":"p","productUrl":"https://a/b","relevanceScore":0.5}]`
	assert.Empty(t, DescribeIssues(json.RawMessage(valid)))

	issues := DescribeIssues(json.RawMessage(`[{"title":"x","relevanceScore":3}]`))
	assert.NotEmpty(t, issues)

	assert.NotEmpty(t, DescribeIssues(json.RawMessage(`{"not":"a list"}`)))
}
