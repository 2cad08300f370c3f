package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single without semicolon",
			script: "CREATE TABLE a (id INTEGER)",
			want:   []string{"CREATE TABLE a (id INTEGER)"},
		},
		{
			name:   "several statements",
			script: "DROP TABLE a;\nALTER TABLE b RENAME TO a;\n",
			want:   []string{"DROP TABLE a", "ALTER TABLE b RENAME TO a"},
		},
		{
			name:   "semicolon inside literal",
			script: "INSERT INTO t VALUES ('a;b');INSERT INTO t VALUES ('it''s;');",
			want:   []string{"INSERT INTO t VALUES ('a;b')", "INSERT INTO t VALUES ('it''s;')"},
		},
		{
			name:   "quoted identifiers",
			script: "CREATE TABLE `x;y` (\"a;b\" TEXT);",
			want:   []string{"CREATE TABLE `x;y` (\"a;b\" TEXT)"},
		},
		{
			name:   "comments only fragments dropped",
			script: "-- header; still a comment\nCREATE TABLE a (id INTEGER);\n/* trailing; */\n",
			want:   []string{"-- header; still a comment\nCREATE TABLE a (id INTEGER)"},
		},
		{
			name: "trigger body kept whole",
			script: "CREATE TRIGGER touch AFTER UPDATE ON a BEGIN\n" +
				"  UPDATE a SET n = n + 1 WHERE id = NEW.id;\n" +
				"END;\nDROP TABLE b;",
			want: []string{
				"CREATE TRIGGER touch AFTER UPDATE ON a BEGIN\n  UPDATE a SET n = n + 1 WHERE id = NEW.id;\nEND",
				"DROP TABLE b",
			},
		},
		{
			name: "case expression inside trigger body",
			script: "CREATE TRIGGER flag AFTER INSERT ON c BEGIN\n" +
				"  UPDATE c SET x = CASE WHEN NEW.y THEN 1 ELSE 0 END;\n" +
				"  UPDATE c SET z = 1;\n" +
				"END;\nSELECT 1;",
			want: []string{
				"CREATE TRIGGER flag AFTER INSERT ON c BEGIN\n" +
					"  UPDATE c SET x = CASE WHEN NEW.y THEN 1 ELSE 0 END;\n" +
					"  UPDATE c SET z = 1;\nEND",
				"SELECT 1",
			},
		},
		{
			name: "nested case inside temp trigger",
			script: "CREATE TEMP TRIGGER grade AFTER UPDATE ON c BEGIN " +
				"UPDATE c SET g = CASE WHEN NEW.s > 5 THEN CASE WHEN NEW.s > 8 THEN 'a' ELSE 'b' END ELSE 'c' END; " +
				"END; DROP TABLE d;",
			want: []string{
				"CREATE TEMP TRIGGER grade AFTER UPDATE ON c BEGIN " +
					"UPDATE c SET g = CASE WHEN NEW.s > 5 THEN CASE WHEN NEW.s > 8 THEN 'a' ELSE 'b' END ELSE 'c' END; END",
				"DROP TABLE d",
			},
		},
		{
			name: "comment marker inside literal in trigger body",
			script: "CREATE TRIGGER mark AFTER INSERT ON c BEGIN\n" +
				"  UPDATE c SET x = '--';\n" +
				"END;\nSELECT 1;",
			want: []string{
				"CREATE TRIGGER mark AFTER INSERT ON c BEGIN\n  UPDATE c SET x = '--';\nEND",
				"SELECT 1",
			},
		},
		{
			name: "keywords in comments and quoted names do not close trigger",
			script: "CREATE TRIGGER quiet AFTER INSERT ON c BEGIN\n" +
				"  -- END;\n" +
				"  UPDATE c SET `end` = 1; /* END; */\n" +
				"END;\nSELECT 2;",
			want: []string{
				"CREATE TRIGGER quiet AFTER INSERT ON c BEGIN\n  -- END;\n  UPDATE c SET `end` = 1; /* END; */\nEND",
				"SELECT 2",
			},
		},
		{
			name:   "case outside trigger splits normally",
			script: "SELECT CASE WHEN 1 THEN 2 END; SELECT 3;",
			want:   []string{"SELECT CASE WHEN 1 THEN 2 END", "SELECT 3"},
		},
		{
			name:   "blank",
			script: " \n\t;;\n",
			want:   nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SplitStatements(tc.script))
		})
	}
}
