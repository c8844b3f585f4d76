// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

// repairJSON fixes defects small local models commonly produce:
// keys missing their opening quote (`, category":` -> `, "category":`)
// and trailing commas before a closing brace or bracket.
func repairJSON(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes)+16)

	inString := false
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inString {
			out = append(out, ch)
			if ch == '\\' && i+1 < len(runes) {
				i++
				out = append(out, runes[i])
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out = append(out, ch)

		case '{', ',':
			out = append(out, ch)
			// Copy whitespace following the separator.
			j := i + 1
			for j < len(runes) && isSpace(runes[j]) {
				out = append(out, runes[j])
				j++
			}
			// An identifier here that runs into `":` lost its opening quote.
			if j < len(runes) && isKeyRune(runes[j]) {
				start := j
				for j < len(runes) && isKeyRune(runes[j]) {
					j++
				}
				if j+1 < len(runes) && runes[j] == '"' && runes[j+1] == ':' {
					out = append(out, '"')
					out = append(out, runes[start:j]...)
					i = j - 1
					continue
				}
				// Not a broken key; leave the identifier to the main loop.
				i = start - 1
				continue
			}
			i = j - 1

		case '}', ']':
			// Drop a trailing comma emitted before the close.
			k := len(out) - 1
			for k >= 0 && isSpace(out[k]) {
				k--
			}
			if k >= 0 && out[k] == ',' {
				out = append(out[:k], out[k+1:]...)
			}
			out = append(out, ch)

		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
