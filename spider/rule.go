package spider

// LinkRule extracts the targets listed on a page.
// Implementations must not fail: missing markup yields no targets.
type LinkRule interface {
	ParseLinks(body []byte) []*Target
}

// ExtraRule extracts a target's extra data from its page.
// Implementations must not fail and must never return nil.
type ExtraRule interface {
	ParseExtra(body []byte) *Extra
}

type LinkRuleFunc func(body []byte) []*Target

func (f LinkRuleFunc) ParseLinks(body []byte) []*Target {
	return f(body)
}

type ExtraRuleFunc func(body []byte) *Extra

func (f ExtraRuleFunc) ParseExtra(body []byte) *Extra {
	return f(body)
}
