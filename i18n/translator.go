package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "tag").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "invalid_format":
			return "形式が不正です"
		case "invalid_enum":
			return "未知のバリアントです"
		case "discriminator_missing":
			return "判別キーがありません"
		case "discriminator_unknown":
			return "未知の判別値です"
		case "parse_error":
			return "解析エラー"
		case "overflow":
			return "範囲外の数値です"
		case "schema_fail":
			return "スキーマにより拒否されました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "invalid_format":
			return "invalid format"
		case "invalid_enum":
			return "unknown enum variant"
		case "discriminator_missing":
			return "discriminator missing"
		case "discriminator_unknown":
			return "unknown discriminator value"
		case "parse_error":
			return "parse error"
		case "overflow":
			return "number out of range"
		case "schema_fail":
			return "schema rejects this value"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
