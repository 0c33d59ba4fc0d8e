package defaults

import "github.com/karupanerura/emojiscript/internal/symbols"

// Entries is the built-in emoji vocabulary.
var Entries = []symbols.Entry{
	// keywords
	{Lexeme: "📦", Terminal: symbols.Var},
	{Lexeme: "📌", Terminal: symbols.Let},
	{Lexeme: "🔒", Terminal: symbols.Const},
	{Lexeme: "🔧", Terminal: symbols.Function},
	{Lexeme: "🔙", Terminal: symbols.Return},
	{Lexeme: "↩️", Terminal: symbols.Return},
	{Lexeme: "🤔", Terminal: symbols.If},
	{Lexeme: "🙃", Terminal: symbols.Else},
	{Lexeme: "🔁", Terminal: symbols.While},
	{Lexeme: "🔂", Terminal: symbols.For},
	{Lexeme: "🛑", Terminal: symbols.Break},
	{Lexeme: "⏭️", Terminal: symbols.Continue},
	{Lexeme: "📢", Terminal: symbols.Print},

	// literals
	{Lexeme: "👍", Terminal: symbols.BooleanLiteral, Text: "true"},
	{Lexeme: "👎", Terminal: symbols.BooleanLiteral, Text: "false"},
	{Lexeme: "🕳️", Terminal: symbols.NullLiteral},
	{Lexeme: "🔟", Terminal: symbols.NumberLiteral, Text: "10"},
	{Lexeme: "💯", Terminal: symbols.NumberLiteral, Text: "100"},

	// arithmetic
	{Lexeme: "➕", Terminal: symbols.Plus},
	{Lexeme: "➖", Terminal: symbols.Minus},
	{Lexeme: "✖️", Terminal: symbols.Star},
	{Lexeme: "➗", Terminal: symbols.Slash},
	{Lexeme: "✂️", Terminal: symbols.Percent},

	// assignment
	{Lexeme: "⬅️", Terminal: symbols.Assign},
	{Lexeme: "➕⬅️", Terminal: symbols.PlusAssign},
	{Lexeme: "➖⬅️", Terminal: symbols.MinusAssign},
	{Lexeme: "✖️⬅️", Terminal: symbols.StarAssign},
	{Lexeme: "➗⬅️", Terminal: symbols.SlashAssign},

	// comparison and logic
	{Lexeme: "🟰", Terminal: symbols.Equal},
	{Lexeme: "🚫🟰", Terminal: symbols.NotEqual},
	{Lexeme: "🚫", Terminal: symbols.Not},
	{Lexeme: "◀️", Terminal: symbols.Less},
	{Lexeme: "◀️🟰", Terminal: symbols.LessEqual},
	{Lexeme: "▶️", Terminal: symbols.Greater},
	{Lexeme: "▶️🟰", Terminal: symbols.GreaterEqual},
	{Lexeme: "🤝", Terminal: symbols.And},
	{Lexeme: "🔀", Terminal: symbols.Or},
	{Lexeme: "👉", Terminal: symbols.Dot},

	// punctuation
	{Lexeme: "🌛", Terminal: symbols.LParen},
	{Lexeme: "🌜", Terminal: symbols.RParen},
	{Lexeme: "📖", Terminal: symbols.LBrace},
	{Lexeme: "📕", Terminal: symbols.RBrace},
	{Lexeme: "📥", Terminal: symbols.LBracket},
	{Lexeme: "📤", Terminal: symbols.RBracket},
	{Lexeme: "🔸", Terminal: symbols.Comma},
	{Lexeme: "🔚", Terminal: symbols.Semicolon},

	{Lexeme: "💭", Terminal: symbols.Comment},
}

var DefaultSymbolTable = symbols.MustNew(Entries)
