package symbols

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Raw decoding targets for the engine's XML doc dump. The wire shapes are
// kept separate from the table types so the table stays free of xml tags.

type xmlClass struct {
	Name         string       `xml:"name,attr"`
	Inherits     string       `xml:"inherits,attr"`
	ScriptPath   string       `xml:"script_path,attr"`
	Deprecated   *string      `xml:"deprecated,attr"`
	Experimental *string      `xml:"experimental,attr"`
	Brief        string       `xml:"brief_description"`
	Description  string       `xml:"description"`
	Constructors []xmlMethod  `xml:"constructors>constructor"`
	Methods      []xmlMethod  `xml:"methods>method"`
	Operators    []xmlMethod  `xml:"operators>operator"`
	Members      []xmlMember  `xml:"members>member"`
	Signals      []xmlSignal  `xml:"signals>signal"`
	Constants    []xmlConst   `xml:"constants>constant"`
	Annotations  []xmlMethod  `xml:"annotations>annotation"`
	ThemeItems   []xmlTheme   `xml:"theme_items>theme_item"`
}

type xmlTypeRef struct {
	Type       string `xml:"type,attr"`
	Enum       string `xml:"enum,attr"`
	IsBitfield string `xml:"is_bitfield,attr"`
}

type xmlMethod struct {
	Name         string      `xml:"name,attr"`
	Qualifiers   string      `xml:"qualifiers,attr"`
	Deprecated   *string     `xml:"deprecated,attr"`
	Experimental *string     `xml:"experimental,attr"`
	Return       *xmlTypeRef `xml:"return"`
	Params       []xmlParam  `xml:"param"`
	Description  string      `xml:"description"`
}

type xmlParam struct {
	Index   int    `xml:"index,attr"`
	Name    string `xml:"name,attr"`
	Type    string `xml:"type,attr"`
	Enum    string `xml:"enum,attr"`
	Default string `xml:"default,attr"`
}

type xmlMember struct {
	Name         string  `xml:"name,attr"`
	Type         string  `xml:"type,attr"`
	Enum         string  `xml:"enum,attr"`
	Setter       string  `xml:"setter,attr"`
	Getter       string  `xml:"getter,attr"`
	Default      string  `xml:"default,attr"`
	Overrides    string  `xml:"overrides,attr"`
	Deprecated   *string `xml:"deprecated,attr"`
	Experimental *string `xml:"experimental,attr"`
	Text         string  `xml:",chardata"`
}

type xmlSignal struct {
	Name         string     `xml:"name,attr"`
	Deprecated   *string    `xml:"deprecated,attr"`
	Experimental *string    `xml:"experimental,attr"`
	Params       []xmlParam `xml:"param"`
	Description  string     `xml:"description"`
}

type xmlConst struct {
	Name       string `xml:"name,attr"`
	Value      string `xml:"value,attr"`
	Enum       string `xml:"enum,attr"`
	IsBitfield string `xml:"is_bitfield,attr"`
	Text       string `xml:",chardata"`
}

type xmlTheme struct {
	Name     string `xml:"name,attr"`
	DataType string `xml:"data_type,attr"`
	Type     string `xml:"type,attr"`
	Default  string `xml:"default,attr"`
	Text     string `xml:",chardata"`
}

// ParseClassXML decodes a single class document from the XML doc dump.
func ParseClassXML(r io.Reader) (*Class, error) {
	var raw xmlClass
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode class xml: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("class element has no name attribute")
	}

	c := NewClass(raw.Name)
	c.Inherits = raw.Inherits
	c.ScriptPath = raw.ScriptPath
	c.Deprecated = raw.Deprecated
	c.Experimental = raw.Experimental
	c.Brief = strings.TrimSpace(raw.Brief)
	c.Description = strings.TrimSpace(raw.Description)

	for i := range raw.Constructors {
		m := convertMethod(&raw.Constructors[i], "constructor")
		c.Constructors[m.Name] = m
	}
	for i := range raw.Methods {
		m := convertMethod(&raw.Methods[i], "method")
		c.Methods[m.Name] = m
	}
	for i := range raw.Operators {
		m := convertMethod(&raw.Operators[i], "operator")
		c.Operators[m.Name] = m
	}
	for i := range raw.Annotations {
		m := convertMethod(&raw.Annotations[i], "annotation")
		c.Annotations[m.Name] = &Annotation{
			Definition:  m.Definition,
			Parameters:  m.Parameters,
			Description: m.Description,
			Qualifiers:  m.Qualifiers,
		}
	}

	for _, raw := range raw.Members {
		c.Properties[raw.Name] = &Property{
			Definition: Definition{
				Kind:         "property",
				Name:         raw.Name,
				Deprecated:   raw.Deprecated,
				Experimental: raw.Experimental,
			},
			Type:      TypeName{Name: raw.Type, Enum: raw.Enum},
			Setter:    raw.Setter,
			Getter:    raw.Getter,
			Default:   raw.Default,
			Overrides: raw.Overrides,
			Text:      strings.TrimSpace(raw.Text),
		}
	}

	for _, raw := range raw.Signals {
		c.Signals[raw.Name] = &Signal{
			Definition: Definition{
				Kind:         "signal",
				Name:         raw.Name,
				Deprecated:   raw.Deprecated,
				Experimental: raw.Experimental,
			},
			Parameters:  convertParams(raw.Params),
			Description: strings.TrimSpace(raw.Description),
		}
	}

	for _, raw := range raw.Constants {
		constant := &Constant{
			Definition: Definition{Kind: "constant", Name: raw.Name},
			Value:      raw.Value,
			Text:       strings.TrimSpace(raw.Text),
			IsBitfield: raw.IsBitfield == "true",
		}
		if raw.Enum != "" {
			enum, ok := c.Enums[raw.Enum]
			if !ok {
				enum = &Enum{
					Definition: Definition{Kind: "enum", Name: raw.Enum},
					IsBitfield: constant.IsBitfield,
					Values:     make(map[string]*Constant),
				}
				c.Enums[raw.Enum] = enum
			}
			enum.Values[raw.Name] = constant
		} else {
			c.Constants[raw.Name] = constant
		}
	}

	for _, raw := range raw.ThemeItems {
		c.ThemeItems[raw.Name] = &ThemeItem{
			Definition: Definition{Kind: "theme property", Name: raw.Name},
			Type:       TypeName{Name: raw.Type},
			DataName:   raw.DataType,
			Text:       strings.TrimSpace(raw.Text),
			Default:    raw.Default,
		}
	}

	return c, nil
}

func convertMethod(raw *xmlMethod, kind string) *Method {
	m := &Method{
		Definition: Definition{
			Kind:         kind,
			Name:         raw.Name,
			Deprecated:   raw.Deprecated,
			Experimental: raw.Experimental,
		},
		ReturnType:  TypeName{Name: "void"},
		Parameters:  convertParams(raw.Params),
		Description: strings.TrimSpace(raw.Description),
		Qualifiers:  raw.Qualifiers,
	}
	if raw.Return != nil {
		m.ReturnType = TypeName{
			Name:       raw.Return.Type,
			Enum:       raw.Return.Enum,
			IsBitfield: raw.Return.IsBitfield == "true",
		}
	}
	return m
}

// convertParams orders parameters by their declared index attribute, which
// is authoritative over document order.
func convertParams(raw []xmlParam) []Parameter {
	sorted := make([]xmlParam, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	params := make([]Parameter, 0, len(sorted))
	for _, p := range sorted {
		params = append(params, Parameter{
			Definition: Definition{Kind: "parameter", Name: p.Name},
			Type:       TypeName{Name: p.Type, Enum: p.Enum},
			Default:    p.Default,
		})
	}
	return params
}
