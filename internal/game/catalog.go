package game

// TypeID indexes the token type table (0..NumTypes-1).
type TypeID int

const NumTypes = 16

// Note and rest type ids. Rests mirror notes at an offset of RestOffset.
const (
	Sixteenth TypeID = iota
	Eighth
	DottedEighth
	Quarter
	DottedQuarter
	Half
	DottedHalf
	Whole

	SixteenthRest
	EighthRest
	DottedEighthRest
	QuarterRest
	DottedQuarterRest
	HalfRest
	DottedHalfRest
	WholeRest
)

const RestOffset = 8

// Duration is the note value a type represents, independent of note/rest.
type Duration string

const (
	DurSixteenth     Duration = "16th"
	DurEighth        Duration = "8th"
	DurDottedEighth  Duration = "8th-dot"
	DurQuarter       Duration = "quarter"
	DurDottedQuarter Duration = "quarter-dot"
	DurHalf          Duration = "half"
	DurDottedHalf    Duration = "half-dot"
	DurWhole         Duration = "whole"
)

// TokenType is an immutable catalog entry.
type TokenType struct {
	ID       TypeID   `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Color    string   `json:"color"`
	Radius   float64  `json:"radius"`
	IsRest   bool     `json:"is_rest"`
	IsDotted bool     `json:"is_dotted"`
	Duration Duration `json:"duration"`
}

var catalog = [NumTypes]TokenType{
	{ID: Sixteenth, Name: "16th note", Symbol: "♬", Color: "#cfe9ff", Radius: 20, Duration: DurSixteenth},
	{ID: Eighth, Name: "8th note", Symbol: "♪", Color: "#9fd3ff", Radius: 25, Duration: DurEighth},
	{ID: DottedEighth, Name: "dotted 8th note", Symbol: "♪.", Color: "#9be7b1", Radius: 25, IsDotted: true, Duration: DurDottedEighth},
	{ID: Quarter, Name: "quarter note", Symbol: "♩", Color: "#4a90e2", Radius: 30, Duration: DurQuarter},
	{ID: DottedQuarter, Name: "dotted quarter note", Symbol: "♩.", Color: "#5cbf75", Radius: 30, IsDotted: true, Duration: DurDottedQuarter},
	{ID: Half, Name: "half note", Symbol: "𝅗𝅥", Color: "#1f5fbf", Radius: 35, Duration: DurHalf},
	{ID: DottedHalf, Name: "dotted half note", Symbol: "𝅗𝅥.", Color: "#2e8b57", Radius: 35, IsDotted: true, Duration: DurDottedHalf},
	{ID: Whole, Name: "whole note", Symbol: "𝅝", Color: "#0b3c8a", Radius: 40, Duration: DurWhole},

	{ID: SixteenthRest, Name: "16th rest", Symbol: "𝄿", Color: "#ffd6d6", Radius: 20, IsRest: true, Duration: DurSixteenth},
	{ID: EighthRest, Name: "8th rest", Symbol: "𝄾", Color: "#ffb3b3", Radius: 25, IsRest: true, Duration: DurEighth},
	{ID: DottedEighthRest, Name: "dotted 8th rest", Symbol: "𝄾.", Color: "#ffb347", Radius: 25, IsRest: true, IsDotted: true, Duration: DurDottedEighth},
	{ID: QuarterRest, Name: "quarter rest", Symbol: "𝄽", Color: "#ff6b6b", Radius: 30, IsRest: true, Duration: DurQuarter},
	{ID: DottedQuarterRest, Name: "dotted quarter rest", Symbol: "𝄽.", Color: "#ff8c42", Radius: 30, IsRest: true, IsDotted: true, Duration: DurDottedQuarter},
	{ID: HalfRest, Name: "half rest", Symbol: "𝄼", Color: "#d63031", Radius: 35, IsRest: true, Duration: DurHalf},
	{ID: DottedHalfRest, Name: "dotted half rest", Symbol: "𝄼.", Color: "#e17055", Radius: 35, IsRest: true, IsDotted: true, Duration: DurDottedHalf},
	{ID: WholeRest, Name: "whole rest", Symbol: "𝄻", Color: "#8b0000", Radius: 40, IsRest: true, Duration: DurWhole},
}

// promotions maps a type to the type two of it merge into. Types absent
// from the table are terminal.
var promotions = map[TypeID]TypeID{
	Sixteenth: Eighth, SixteenthRest: EighthRest,
	Eighth: Quarter, EighthRest: QuarterRest,
	DottedEighth: DottedQuarter, DottedEighthRest: DottedQuarterRest,
	Quarter: Half, QuarterRest: HalfRest,
	DottedQuarter: DottedHalf, DottedQuarterRest: DottedHalfRest,
	Half: Whole, HalfRest: WholeRest,
}

// Spawn seed groups.
var (
	BaseNoteSeeds   = []TypeID{Sixteenth, Eighth}
	BaseRestSeeds   = []TypeID{SixteenthRest, EighthRest}
	DottedNoteTypes = []TypeID{DottedEighth, DottedQuarter, DottedHalf}
	DottedRestTypes = []TypeID{DottedEighthRest, DottedQuarterRest, DottedHalfRest}
)

// Valid reports whether id names a catalog entry.
func (id TypeID) Valid() bool {
	return id >= 0 && id < NumTypes
}

// TypeOf returns the catalog entry for id. It panics on an invalid id.
func TypeOf(id TypeID) TokenType {
	return catalog[id]
}

// Types returns a copy of the full catalog in id order.
func Types() []TokenType {
	out := make([]TokenType, NumTypes)
	copy(out, catalog[:])
	return out
}

// PromotionOf returns the type two tokens of id merge into.
func PromotionOf(id TypeID) (TypeID, bool) {
	next, ok := promotions[id]
	return next, ok
}

func IsRest(id TypeID) bool {
	return id.Valid() && catalog[id].IsRest
}

func IsDotted(id TypeID) bool {
	return id.Valid() && catalog[id].IsDotted
}

func RadiusOf(id TypeID) float64 {
	return catalog[id].Radius
}

// NameOf returns the display name, or a placeholder for unknown ids.
func NameOf(id TypeID) string {
	if !id.Valid() {
		return "unknown type"
	}
	return catalog[id].Name
}
