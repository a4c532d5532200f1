package githubsearch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNoProxies  = errors.New("input: proxies must not be empty")
	ErrNoKeywords = errors.New("input: keywords field is missing")
)

type QueryType string

const (
	Repositories QueryType = "Repositories"
	Issues       QueryType = "Issues"
	Wikis        QueryType = "Wikis"
)

// Param returns the value of the search "type" parameter.
// Unknown types search repositories.
func (q QueryType) Param() string {
	switch q {
	case Repositories, Issues, Wikis:
		return strings.ToLower(string(q))
	default:
		return strings.ToLower(string(Repositories))
	}
}

// SearchURL builds the first results page for keyword.
func SearchURL(keyword string, q QueryType) string {
	u := *SiteURL
	u.Path = "/search"
	u.RawQuery = url.Values{
		"q":    []string{keyword},
		"type": []string{q.Param()},
	}.Encode()

	return u.String()
}

// Input is the crawl request.
type Input struct {
	Keywords []string  `json:"keywords"`
	Proxies  []string  `json:"proxies"`
	Type     QueryType `json:"type"`
}

func ParseInput(data []byte) (Input, error) {
	var raw struct {
		Keywords *[]string `json:"keywords"`
		Proxies  []string  `json:"proxies"`
		Type     QueryType `json:"type"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return Input{}, fmt.Errorf("input: %w", err)
	}

	if raw.Keywords == nil {
		return Input{}, ErrNoKeywords
	}

	in := Input{
		Keywords: *raw.Keywords,
		Proxies:  raw.Proxies,
		Type:     raw.Type,
	}

	return in, in.Validate()
}

func (in Input) Validate() error {
	if len(in.Proxies) == 0 {
		return ErrNoProxies
	}

	return nil
}
