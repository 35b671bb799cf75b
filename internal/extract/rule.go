package extract

// Header is the text the field extractors look at: the first page, and the second
// page for the extractors that need it.
type Header struct {
	First  string
	Second string
}

// Field is an extracted value with the confidence of the rule that produced it.
// Value is nil exactly when no rule matched; Confidence is then Low.
type Field[T any] struct {
	Value      *T
	Confidence Confidence
}

// Found reports whether a rule matched.
func (f Field[T]) Found() bool { return f.Value != nil }

// Rule is one step of a cascade.
type Rule[T any] struct {
	Name       string
	Confidence Confidence
	Match      func(h Header) (T, bool)
}

// Cascade tries its rules in order. The first match wins.
type Cascade[T any] []Rule[T]

// Run returns the first matching rule's value and the rule name, or a Low miss and "".
func (c Cascade[T]) Run(h Header) (Field[T], string) {
	for _, r := range c {
		if v, ok := r.Match(h); ok {
			return Field[T]{Value: &v, Confidence: r.Confidence}, r.Name
		}
	}
	return Field[T]{Confidence: Low}, ""
}
