package schema

// Keywords is the static SQL keyword set merged into editor suggestions.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "IN", "IS", "NULL",
	"INSERT", "INTO", "VALUES", "UPDATE", "SET", "DELETE",
	"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "OUTER", "ON",
	"GROUP", "BY", "HAVING", "ORDER", "ASC", "DESC", "LIMIT", "OFFSET",
	"DISTINCT", "AS", "LIKE", "ILIKE", "BETWEEN", "CASE", "WHEN", "THEN",
	"ELSE", "END", "UNION", "ALL", "EXISTS", "COUNT", "SUM", "AVG",
	"MIN", "MAX", "CREATE", "TABLE", "VIEW", "INDEX", "DROP", "ALTER",
	"TRUNCATE", "WITH",
}
