package sqlshim

// entry is one blacklist (pattern, replacement) pair, held as already
// tokenized, whitespace-filtered token slices so matching never
// re-tokenizes the pattern text on every query.
type entry struct {
	pattern     []Token
	replacement []Token
}

// blacklistEntries mirrors BLACKLIST_SQL_MAPPING: canonical introspection
// queries issued by pgcli, psql, DBeaver, pgAdmin and Grafana, rewritten to
// an equivalent "return no rows" or constant form the file-backed engine
// can always answer without understanding PostgreSQL's internal catalogs.
var blacklistEntries = buildEntries([][2]string{
	{
		// pgcli: walk pg_constraint foreign keys.
		`SELECT s_p.nspname AS parentschema,
		        t_p.relname AS parenttable,
		        unnest((
		         select
		             array_agg(attname ORDER BY i)
		         from
		             (select unnest(confkey) as attnum, generate_subscripts(confkey, 1) as i) x
		             JOIN pg_catalog.pg_attribute c USING(attnum)
		             WHERE c.attrelid = fk.confrelid
		         )) AS parentcolumn,
		        s_c.nspname AS childschema,
		        t_c.relname AS childtable,
		        unnest((
		         select
		             array_agg(attname ORDER BY i)
		         from
		             (select unnest(conkey) as attnum, generate_subscripts(conkey, 1) as i) x
		             JOIN pg_catalog.pg_attribute c USING(attnum)
		             WHERE c.attrelid = fk.conrelid
		         )) AS childcolumn
		 FROM pg_catalog.pg_constraint fk
		 JOIN pg_catalog.pg_class      t_p ON t_p.oid = fk.confrelid
		 JOIN pg_catalog.pg_namespace  s_p ON s_p.oid = t_p.relnamespace
		 JOIN pg_catalog.pg_class      t_c ON t_c.oid = fk.conrelid
		 JOIN pg_catalog.pg_namespace  s_c ON s_c.oid = t_c.relnamespace
		 WHERE fk.contype = 'f'`,
		`SELECT
		   NULL::TEXT AS parentschema,
		   NULL::TEXT AS parenttable,
		   NULL::TEXT AS parentcolumn,
		   NULL::TEXT AS childschema,
		   NULL::TEXT AS childtable,
		   NULL::TEXT AS childcolumn
		 WHERE false`,
	},
	{
		// pgcli: composite-type catalog scan.
		`SELECT n.nspname schema_name,
		        t.typname type_name
		 FROM   pg_catalog.pg_type t
		        INNER JOIN pg_catalog.pg_namespace n
		           ON n.oid = t.typnamespace
		 WHERE ( t.typrelid = 0
		         OR (
		               SELECT c.relkind = 'c'
		               FROM pg_catalog.pg_class c
		               WHERE c.oid = t.typrelid
		             )
		       )
		       AND NOT EXISTS(
		             SELECT  1
		             FROM    pg_catalog.pg_type el
		             WHERE   el.oid = t.typelem AND el.typarray = t.oid
		           )
		       AND n.nspname <> 'pg_catalog'
		       AND n.nspname <> 'information_schema'
		 ORDER BY 1, 2`,
		`SELECT NULL::TEXT AS schema_name, NULL::TEXT AS type_name WHERE false`,
	},
	{
		// psql \d <table>: row-level security policies.
		`SELECT pol.polname, pol.polpermissive,
		   CASE WHEN pol.polroles = '{0}' THEN NULL ELSE pg_catalog.array_to_string(array(select rolname from pg_catalog.pg_roles where oid = any (pol.polroles) order by 1),',') END,
		   pg_catalog.pg_get_expr(pol.polqual, pol.polrelid),
		   pg_catalog.pg_get_expr(pol.polwithcheck, pol.polrelid),
		   CASE pol.polcmd
		     WHEN 'r' THEN 'SELECT'
		     WHEN 'a' THEN 'INSERT'
		     WHEN 'w' THEN 'UPDATE'
		     WHEN 'd' THEN 'DELETE'
		     END AS cmd
		 FROM pg_catalog.pg_policy pol
		 WHERE pol.polrelid = $1 ORDER BY 1`,
		`SELECT
		   NULL::TEXT AS polname,
		   NULL::TEXT AS polpermissive,
		   NULL::TEXT AS array_to_string,
		   NULL::TEXT AS pg_get_expr_1,
		   NULL::TEXT AS pg_get_expr_2,
		   NULL::TEXT AS cmd
		 WHERE false`,
	},
	{
		// psql \d <table>: extended statistics objects.
		`SELECT oid, stxrelid::pg_catalog.regclass, stxnamespace::pg_catalog.regnamespace::pg_catalog.text AS nsp, stxname,
		        pg_catalog.pg_get_statisticsobjdef_columns(oid) AS columns,
		          'd' = any(stxkind) AS ndist_enabled,
		          'f' = any(stxkind) AS deps_enabled,
		          'm' = any(stxkind) AS mcv_enabled,
		        stxstattarget
		        FROM pg_catalog.pg_statistic_ext
		        WHERE stxrelid = $1
		        ORDER BY nsp, stxname`,
		`SELECT
		   NULL::INT AS oid,
		   NULL::TEXT AS stxrelid,
		   NULL::TEXT AS nsp,
		   NULL::TEXT AS stxname,
		   NULL::TEXT AS columns,
		   NULL::BOOLEAN AS ndist_enabled,
		   NULL::BOOLEAN AS deps_enabled,
		   NULL::BOOLEAN AS mcv_enabled,
		   NULL::TEXT AS stxstattarget
		 WHERE false`,
	},
	{
		// psql \d <table>: logical-replication publications.
		`SELECT pubname
		     , NULL
		     , NULL
		FROM pg_catalog.pg_publication p
		     JOIN pg_catalog.pg_publication_namespace pn ON p.oid = pn.pnpubid
		     JOIN pg_catalog.pg_class pc ON pc.relnamespace = pn.pnnspid
		WHERE pc.oid = $1 and pg_catalog.pg_relation_is_publishable($1)
		UNION
		SELECT pubname
		     , pg_get_expr(pr.prqual, c.oid)
		     , (CASE WHEN pr.prattrs IS NOT NULL THEN
		         (SELECT string_agg(attname, ', ')
		           FROM pg_catalog.generate_series(0, pg_catalog.array_upper(pr.prattrs::pg_catalog.int2[], 1)) s,
		                pg_catalog.pg_attribute
		          WHERE attrelid = pr.prrelid AND attnum = prattrs[s])
		        ELSE NULL END) FROM pg_catalog.pg_publication p
		     JOIN pg_catalog.pg_publication_rel pr ON p.oid = pr.prpubid
		     JOIN pg_catalog.pg_class c ON c.oid = pr.prrelid
		WHERE pr.prrelid = $1
		UNION
		SELECT pubname
		     , NULL
		     , NULL
		FROM pg_catalog.pg_publication p
		WHERE p.puballtables AND pg_catalog.pg_relation_is_publishable($1)
		ORDER BY 1`,
		`SELECT
		   NULL::TEXT AS pubname,
		   NULL::TEXT AS _1,
		   NULL::TEXT AS _2
		 WHERE false`,
	},
	{
		// Grafana: search_path array-index trick to resolve "$user" schema.
		`SELECT
		    CASE WHEN trim(s[i]) = '"$user"' THEN user ELSE trim(s[i]) END
		FROM
		    generate_series(
		        array_lower(string_to_array(current_setting('search_path'),','),1),
		        array_upper(string_to_array(current_setting('search_path'),','),1)
		    ) as i,
		    string_to_array(current_setting('search_path'),',') s`,
		`'public'`,
	},
	{
		// DBeaver / DataGrip: server capability probe via pg_settings.
		`SELECT setting FROM pg_catalog.pg_settings WHERE name = 'is_superuser'`,
		`SELECT 'off'::TEXT AS setting WHERE false`,
	},
	{
		// pgAdmin: extension inventory scan.
		`SELECT * FROM pg_catalog.pg_extension`,
		`SELECT NULL::TEXT AS extname WHERE false`,
	},
})

func buildEntries(pairs [][2]string) []entry {
	out := make([]entry, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, entry{
			pattern:     FilterSignificant(Tokenize(p[0])),
			replacement: FilterSignificant(Tokenize(p[1])),
		})
	}
	return out
}

// ApplyBlacklist runs every blacklist entry over sql's significant token
// stream, replacing each maximal, left-to-right, non-overlapping match. A
// pattern token equal to "Placeholder($1)"'s own token -- the $-number
// placeholder produced by tokenizing a literal "$1", which is how the
// patterns above spell it -- matches any single input token, the same
// wildcard semantics the reference tokenizer gives its own
// Token::Placeholder. Semicolon tokens are not filtered: a trailing ";"
// after a matched span is carried into the result.
func ApplyBlacklist(sql string) string {
	toks := FilterSignificant(Tokenize(sql))
	if len(toks) == 0 {
		return sql
	}

	out := make([]Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		matched := false
		for _, e := range blacklistEntries {
			if len(e.pattern) == 0 || i+len(e.pattern) > len(toks) {
				continue
			}
			if matchesAt(toks, i, e.pattern) {
				out = append(out, e.replacement...)
				i += len(e.pattern)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, toks[i])
			i++
		}
	}
	return Join(out)
}

func matchesAt(toks []Token, start int, pattern []Token) bool {
	for i, p := range pattern {
		if p.Kind == TokPlaceholder {
			continue
		}
		if !toks[start+i].matchable(p) {
			return false
		}
	}
	return true
}
