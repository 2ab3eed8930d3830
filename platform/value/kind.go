package value

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindText
	KindList
	KindRecord
	KindReference
	KindUnrepresentable
)

var kindNames = [...]string{
	KindNull:            "null",
	KindBoolean:         "boolean",
	KindInteger:         "integer",
	KindReal:            "real",
	KindText:            "text",
	KindList:            "list",
	KindRecord:          "record",
	KindReference:       "reference",
	KindUnrepresentable: "unrepresentable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
