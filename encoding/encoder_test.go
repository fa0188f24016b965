package encoding_test

import (
	"testing"

	"github.com/effective-security/functic/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Details struct {
	Location string `json:"location" fake:"Beijing"`
	Gender   string `json:"gender" fake:"male"`
}

type Person struct {
	Name       string    `json:"name" fake:"Syd Xu"`
	Age        int       `json:"age" fake:"24"`
	Details    *Details  `json:"details,omitempty"`
	DetailList []Details `json:"details_list,omitempty" fakesize:"1"`
}

type fakedRequest struct {
	Query string `json:"query"`
}

func (fakedRequest) Fake() any {
	return &fakedRequest{Query: "what is golang"}
}

func TestParseFormat(t *testing.T) {
	for name, exp := range map[string]encoding.Format{
		"":     encoding.FormatJSON,
		"JSON": encoding.FormatJSON,
		"yml":  encoding.FormatYAML,
		"yaml": encoding.FormatYAML,
		"toml": encoding.FormatTOML,
	} {
		f, err := encoding.ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, exp, f)
	}
	_, err := encoding.ParseFormat("xml")
	assert.EqualError(t, err, `unsupported format: "xml"`)

	assert.Equal(t, encoding.FormatYAML, encoding.FormatFromFile("args.yml"))
	assert.Equal(t, encoding.FormatTOML, encoding.FormatFromFile("args.toml"))
	assert.Equal(t, encoding.FormatJSON, encoding.FormatFromFile("args.json"))
	assert.Equal(t, encoding.FormatJSON, encoding.FormatFromFile("args"))
}

func TestMarshal(t *testing.T) {
	p := Person{
		Name:    "Syd Xu",
		Age:     24,
		Details: &Details{Location: "Beijing", Gender: "male"},
	}

	js, err := encoding.Marshal(encoding.FormatJSON, p)
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "Syd Xu",
  "age": 24,
  "details": {
    "location": "Beijing",
    "gender": "male"
  }
}
`, string(js))

	y, err := encoding.Marshal(encoding.FormatYAML, p)
	require.NoError(t, err)
	assert.Equal(t, `age: 24
details:
  gender: male
  location: Beijing
name: Syd Xu
`, string(y))

	tm, err := encoding.Marshal(encoding.FormatTOML, p)
	require.NoError(t, err)
	assert.Contains(t, string(tm), `name = "Syd Xu"`)
	assert.Contains(t, string(tm), "[details]")

	_, err = encoding.Marshal(encoding.FormatTOML, []string{"a"})
	assert.Error(t, err)

	_, err = encoding.Marshal("xml", p)
	assert.EqualError(t, err, `unsupported format: "xml"`)
}

func TestToJSON(t *testing.T) {
	js, err := encoding.ToJSON(encoding.FormatYAML, []byte("name: Syd Xu\nage: 24\ndetails:\n  location: Beijing\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Syd Xu","age":24,"details":{"location":"Beijing"}}`, string(js))

	js, err = encoding.ToJSON(encoding.FormatTOML, []byte("```toml\nname = \"Syd Xu\"\nage = 24\n\n[details]\nlocation = \"Beijing\"\n```"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Syd Xu","age":24,"details":{"location":"Beijing"}}`, string(js))

	js, err = encoding.ToJSON(encoding.FormatJSON, []byte(`{"name":"Syd Xu"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Syd Xu"}`, string(js))

	_, err = encoding.ToJSON(encoding.FormatYAML, []byte("name: [a"))
	assert.Error(t, err)
	_, err = encoding.ToJSON(encoding.FormatTOML, []byte("name = "))
	assert.Error(t, err)
}

func TestExample(t *testing.T) {
	v, err := encoding.Example[Person]()
	require.NoError(t, err)
	p, ok := v.(*Person)
	require.True(t, ok)
	assert.Equal(t, "Syd Xu", p.Name)
	assert.Equal(t, 24, p.Age)
	require.Len(t, p.DetailList, 1)
	assert.Equal(t, "Beijing", p.DetailList[0].Location)

	v, err = encoding.Example[fakedRequest]()
	require.NoError(t, err)
	assert.Equal(t, &fakedRequest{Query: "what is golang"}, v)
}
