package psqlbuilder

import "github.com/Masterminds/squirrel"

// Builder построитель запросов с плейсхолдерами $1, $2, ...
// Такой формат понимают и postgres, и sqlite3.
var Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func Select(columns ...string) squirrel.SelectBuilder {
	return Builder.Select(columns...)
}

func Insert(table string) squirrel.InsertBuilder {
	return Builder.Insert(table)
}

func Update(table string) squirrel.UpdateBuilder {
	return Builder.Update(table)
}

func Delete(table string) squirrel.DeleteBuilder {
	return Builder.Delete(table)
}
