// Package bmeta метаданные сборки, задаваемые через -ldflags.
package bmeta

import "go.uber.org/zap"

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Info версия, дата и коммит сборки.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// New заполняет пустые значения строкой N/A.
func New(version, date, commit string) Info {
	orDefault := func(v string) string {
		if v == "" {
			return defaultBuildMeta
		}
		return v
	}
	return Info{
		Version: orDefault(version),
		Date:    orDefault(date),
		Commit:  orDefault(commit),
	}
}

// Fields поля для записи в лог при старте.
func (i Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("build_version", i.Version),
		zap.String("build_date", i.Date),
		zap.String("build_commit", i.Commit),
	}
}
