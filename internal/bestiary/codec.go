// ABOUTME: Hand-written easyjson decoder for the monster dataset payload
// ABOUTME: The payload is a multi-megabyte object keyed by id string; codegen cannot express the skip-most-fields shape

package bestiary

import "github.com/mailru/easyjson/jlexer"

// decodeDataset parses the full monsters payload: one JSON object whose keys
// are decimal id strings. Each record carries its own id field, so the object
// key is skipped rather than parsed.
func decodeDataset(data []byte) ([]*Monster, error) {
	in := jlexer.Lexer{Data: data}
	var monsters []*Monster

	in.Delim('{')
	for !in.IsDelim('}') {
		in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		m := new(Monster)
		decodeMonster(&in, m)
		monsters = append(monsters, m)
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()

	if err := in.Error(); err != nil {
		return nil, err
	}
	return monsters, nil
}

func decodeMonster(in *jlexer.Lexer, out *Monster) {
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			out.ID = in.Int()
		case "name":
			out.Name = in.String()
		case "combat_level":
			out.CombatLevel = in.Int()
		case "hitpoints":
			out.Hitpoints = in.Int()
		case "wiki_url":
			out.WikiURL = in.String()
		case "drops":
			in.Delim('[')
			for !in.IsDelim(']') {
				var d Drop
				decodeDrop(in, &d)
				out.Drops = append(out.Drops, d)
				in.WantComma()
			}
			in.Delim(']')
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
}

func decodeDrop(in *jlexer.Lexer, out *Drop) {
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			out.ID = in.Int()
		case "name":
			out.Name = in.String()
		case "quantity":
			out.Quantity = in.String()
		case "noted":
			out.Noted = in.Bool()
		case "rarity":
			out.Rarity = in.Float64()
		case "rolls":
			out.Rolls = in.Int()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
}
