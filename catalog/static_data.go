package catalog

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// staticSchemas is the fixed list of pg_catalog tables this surrogate
// serves from programmatically-built, permanently-empty record batches,
// built the way the teacher's architecture calls for decoding an
// embedded Arrow-IPC blob once at startup (see DESIGN.md's embedded-blob
// note): the blob format is swapped for array builders at init() time,
// but the "decode once, serve the same *arrow.Record forever" shape is
// identical. Columns are a representative subset of each real catalog's
// columns, enough for clients that SELECT specific well-known columns
// from these tables without ever finding a populated row (spec.md §4.4's
// "read-only and mostly empty").
var staticSchemas = map[string][]arrow.Field{
	"pg_aggregate":              {f("aggfnoid", oidT), f("aggkind", strT), f("aggnumdirectargs", i2T)},
	"pg_am":                     {f("oid", oidT), f("amname", strT), f("amtype", strT)},
	"pg_amop":                   {f("oid", oidT), f("amopfamily", oidT), f("amopstrategy", i2T)},
	"pg_amproc":                 {f("oid", oidT), f("amprocfamily", oidT), f("amprocnum", i2T)},
	"pg_attrdef":                {f("oid", oidT), f("adrelid", oidT), f("adnum", i2T), f("adbin", strT)},
	"pg_auth_members":           {f("roleid", oidT), f("member", oidT), f("admin_option", boolT)},
	"pg_authid":                 {f("oid", oidT), f("rolname", strT), f("rolsuper", boolT)},
	"pg_cast":                   {f("oid", oidT), f("castsource", oidT), f("casttarget", oidT), f("castcontext", strT)},
	"pg_collation":              {f("oid", oidT), f("collname", strT), f("collnamespace", oidT)},
	"pg_constraint":             {f("oid", oidT), f("conname", strT), f("connamespace", oidT), f("contype", strT), f("conrelid", oidT)},
	"pg_conversion":             {f("oid", oidT), f("conname", strT), f("connamespace", oidT)},
	"pg_db_role_setting":        {f("setdatabase", oidT), f("setrole", oidT), f("setconfig", strArrT)},
	"pg_default_acl":            {f("oid", oidT), f("defaclrole", oidT), f("defaclnamespace", oidT)},
	"pg_depend":                 {f("classid", oidT), f("objid", oidT), f("refclassid", oidT), f("refobjid", oidT), f("deptype", strT)},
	"pg_description":            {f("objoid", oidT), f("classoid", oidT), f("objsubid", i4T), f("description", strT)},
	"pg_enum":                   {f("oid", oidT), f("enumtypid", oidT), f("enumsortorder", f4T), f("enumlabel", strT)},
	"pg_event_trigger":          {f("oid", oidT), f("evtname", strT), f("evtevent", strT)},
	"pg_extension":              {f("oid", oidT), f("extname", strT), f("extnamespace", oidT)},
	"pg_foreign_data_wrapper":   {f("oid", oidT), f("fdwname", strT)},
	"pg_foreign_server":         {f("oid", oidT), f("srvname", strT), f("srvfdw", oidT)},
	"pg_foreign_table":          {f("ftrelid", oidT), f("ftserver", oidT)},
	"pg_index":                  {f("indexrelid", oidT), f("indrelid", oidT), f("indnatts", i2T), f("indisunique", boolT), f("indisprimary", boolT)},
	"pg_inherits":               {f("inhrelid", oidT), f("inhparent", oidT), f("inhseqno", i4T)},
	"pg_init_privs":             {f("objoid", oidT), f("classoid", oidT), f("objsubid", i4T)},
	"pg_language":               {f("oid", oidT), f("lanname", strT), f("lanpltrusted", boolT)},
	"pg_largeobject":            {f("loid", oidT), f("pageno", i4T), f("data", binT)},
	"pg_largeobject_metadata":   {f("oid", oidT), f("lomowner", oidT)},
	"pg_opclass":                {f("oid", oidT), f("opcmethod", oidT), f("opcname", strT)},
	"pg_operator":               {f("oid", oidT), f("oprname", strT), f("oprnamespace", oidT)},
	"pg_opfamily":               {f("oid", oidT), f("opfmethod", oidT), f("opfname", strT)},
	"pg_partitioned_table":      {f("partrelid", oidT), f("partstrat", strT)},
	"pg_policy":                 {f("oid", oidT), f("polname", strT), f("polrelid", oidT), f("polcmd", strT)},
	"pg_proc":                   {f("oid", oidT), f("proname", strT), f("pronamespace", oidT), f("prorettype", oidT)},
	"pg_publication":            {f("oid", oidT), f("pubname", strT), f("puballtables", boolT)},
	"pg_publication_namespace":  {f("oid", oidT), f("pubid", oidT), f("pnnspid", oidT)},
	"pg_publication_rel":        {f("oid", oidT), f("prpubid", oidT), f("prrelid", oidT)},
	"pg_range":                  {f("rngtypid", oidT), f("rngsubtype", oidT)},
	"pg_replication_origin":     {f("roident", oidT), f("roname", strT)},
	"pg_rewrite":                {f("oid", oidT), f("rulename", strT), f("ev_class", oidT)},
	"pg_roles":                  {f("oid", oidT), f("rolname", strT), f("rolsuper", boolT), f("rolcanlogin", boolT)},
	"pg_seclabel":               {f("objoid", oidT), f("classoid", oidT), f("label", strT)},
	"pg_sequence":               {f("seqrelid", oidT), f("seqtypid", oidT), f("seqstart", i8T)},
	"pg_settings":               {f("name", strT), f("setting", strT), f("unit", strT), f("category", strT)},
	"pg_shdepend":                {f("dbid", oidT), f("classid", oidT), f("objid", oidT), f("refclassid", oidT)},
	"pg_shdescription":          {f("objoid", oidT), f("classoid", oidT), f("description", strT)},
	"pg_shseclabel":             {f("objoid", oidT), f("classoid", oidT), f("label", strT)},
	"pg_statistic":              {f("starelid", oidT), f("staattnum", i2T)},
	"pg_statistic_ext":          {f("oid", oidT), f("stxname", strT), f("stxrelid", oidT)},
	"pg_statistic_ext_data":     {f("stxoid", oidT)},
	"pg_subscription":           {f("oid", oidT), f("subname", strT), f("subenabled", boolT)},
	"pg_subscription_rel":       {f("srsubid", oidT), f("srrelid", oidT)},
	"pg_tablespace":             {f("oid", oidT), f("spcname", strT), f("spcowner", oidT)},
	"pg_transform":              {f("oid", oidT), f("trftype", oidT), f("trflang", oidT)},
	"pg_trigger":                {f("oid", oidT), f("tgname", strT), f("tgrelid", oidT)},
	"pg_ts_config":              {f("oid", oidT), f("cfgname", strT)},
	"pg_ts_config_map":          {f("mapcfg", oidT), f("maptokentype", i4T)},
	"pg_ts_dict":                {f("oid", oidT), f("dictname", strT)},
	"pg_ts_parser":              {f("oid", oidT), f("prsname", strT)},
	"pg_ts_template":            {f("oid", oidT), f("tmplname", strT)},
	"pg_type":                   {f("oid", oidT), f("typname", strT), f("typnamespace", oidT), f("typlen", i2T), f("typtype", strT)},
	"pg_user_mapping":           {f("oid", oidT), f("umuser", oidT), f("umserver", oidT)},
}

type fieldKind int

const (
	oidT fieldKind = iota
	strT
	strArrT
	boolT
	i2T
	i4T
	i8T
	f4T
	binT
)

func f(name string, kind fieldKind) arrow.Field {
	var dt arrow.DataType
	switch kind {
	case oidT:
		dt = arrow.PrimitiveTypes.Uint32
	case strT:
		dt = arrow.BinaryTypes.String
	case strArrT:
		dt = arrow.ListOf(arrow.BinaryTypes.String)
	case boolT:
		dt = arrow.FixedWidthTypes.Boolean
	case i2T:
		dt = arrow.PrimitiveTypes.Int16
	case i4T:
		dt = arrow.PrimitiveTypes.Int32
	case i8T:
		dt = arrow.PrimitiveTypes.Int64
	case f4T:
		dt = arrow.PrimitiveTypes.Float32
	case binT:
		dt = arrow.BinaryTypes.Binary
	default:
		dt = arrow.BinaryTypes.String
	}
	return arrow.Field{Name: name, Type: dt, Nullable: true}
}

// staticTables holds one permanently-empty, zero-row *arrow.Record per
// entry of staticSchemas, built once at package init and reused for
// every scan — the same "decode once, serve from memory" discipline
// spec.md §4.4 calls for, minus the IPC decode step (see DecodeIPC for
// the real blob path).
var staticTables = buildStaticTables()

func buildStaticTables() map[string]arrow.Record {
	out := make(map[string]arrow.Record, len(staticSchemas))
	for name, fields := range staticSchemas {
		schema := arrow.NewSchema(fields, nil)
		b := array.NewRecordBuilder(pool, schema)
		out[name] = b.NewRecord()
		b.Release()
	}
	return out
}
