package markup

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/waypoint/pkg/domain"
)

const (
	xmlStateTag     = "STATE"
	xmlIDAttr       = "id"
	xmlActionAttr   = "action"
	xmlNextAttr     = "nextState"
	xmlRootNameAttr = "name"
)

func decodeXML(r io.Reader) (*domain.Config, error) {
	dec := xml.NewDecoder(r)
	cfg := &domain.Config{States: []domain.StateConfig{}}

	// One entry per open element: the index of the state it declares, or -1.
	var open []int
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: xml: %w", domain.ErrConfig, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot {
				sawRoot = true
				cfg.Name = attr(t, xmlRootNameAttr)
			}

			// A nested STATE declares a state of its own, never a transition of its parent.
			if t.Name.Local == xmlStateTag {
				cfg.States = append(cfg.States, domain.StateConfig{ID: domain.StateID(attr(t, xmlIDAttr))})
				open = append(open, len(cfg.States)-1)
				continue
			}

			if n := len(open); n > 0 && open[n-1] >= 0 {
				owner := &cfg.States[open[n-1]]
				owner.Transitions = append(owner.Transitions, domain.TransitionConfig{
					Message: domain.MessageID(attr(t, xmlIDAttr)),
					Action:  attr(t, xmlActionAttr),
					Next:    domain.StateID(attr(t, xmlNextAttr)),
				})
			}
			open = append(open, -1)

		case xml.EndElement:
			open = open[:len(open)-1]
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: xml: empty document", domain.ErrConfig)
	}
	return cfg, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

type xmlDoc struct {
	XMLName xml.Name   `xml:"FSM"`
	Name    string     `xml:"name,attr,omitempty"`
	States  []xmlState `xml:"STATE"`
}

type xmlState struct {
	ID          string          `xml:"id,attr"`
	Transitions []xmlTransition `xml:"MESSAGE"`
}

type xmlTransition struct {
	Message string `xml:"id,attr"`
	Action  string `xml:"action,attr"`
	Next    string `xml:"nextState,attr"`
}

func encodeXML(w io.Writer, cfg *domain.Config) error {
	doc := xmlDoc{Name: cfg.Name, States: make([]xmlState, 0, len(cfg.States))}
	for _, s := range cfg.States {
		xs := xmlState{ID: string(s.ID)}
		for _, t := range s.Transitions {
			xs.Transitions = append(xs.Transitions, xmlTransition{
				Message: string(t.Message),
				Action:  t.Action,
				Next:    string(t.Next),
			})
		}
		doc.States = append(doc.States, xs)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
