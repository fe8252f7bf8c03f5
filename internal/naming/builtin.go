package naming

// 文档注释：内置映射（Natural Earth 国家名 → 古典地理名称）
// 约束：键需与数据集中 NAME_LONG/ADMIN/SOVEREIGNT 的写法完全一致；
// Sri Lanka、Myanmar 的多种译名只保留一条；重复键在 init 时 panic。
var builtinEntries = []Entry{
	{"India", "Bharata Khanda"},
	{"Pakistan", "Sindhu Desha"},
	{"Afghanistan", "Gandhara"},
	{"Iran", "Parasika"},
	{"Nepal", "Nepala"},
	{"Bhutan", "Bhota Desha"},
	{"Bangladesh", "Vanga"},
	{"Sri Lanka", "Lanka"},
	{"Maldives", "Maladvipa"},
	{"Myanmar", "Suvarnabhumi"},
	{"Thailand", "Dvaravati"},
	{"Cambodia", "Kambuja"},
	{"Laos", "Lan Xang"},
	{"Vietnam", "Champa"},
	{"Malaysia", "Suvarnadvipa"},
	{"Indonesia", "Yavadvipa"},
	{"Philippines", "Ma-i"},
	{"China", "Cina Desha"},
	{"Mongolia", "Uttarakuru"},
	{"Japan", "Yamato"},
	{"Korea", "Goryeo"},
	{"Republic of Korea", "Goryeo"},
	{"Tajikistan", "Kamboja"},
	{"Uzbekistan", "Sogdiana"},
	{"Turkmenistan", "Margiana"},
	{"Kazakhstan", "Saka Dvipa"},
	{"Iraq", "Mesopotamia"},
	{"Syria", "Aram"},
	{"Turkey", "Anatolia"},
	{"Greece", "Yavana Desha"},
	{"Italy", "Romaka Desha"},
	{"Egypt", "Misra"},
	{"Ethiopia", "Aksum"},
	{"Sudan", "Kush"},
	{"Yemen", "Saba"},
	{"Saudi Arabia", "Arabia Deserta"},
	{"Oman", "Magan"},
	{"Israel", "Canaan"},
	{"Lebanon", "Phoenicia"},
	{"Armenia", "Urartu"},
	{"Georgia", "Colchis"},
	{"Azerbaijan", "Albania Caucasica"},
	{"Libya", "Cyrenaica"},
	{"Tunisia", "Carthage"},
	{"Morocco", "Mauretania"},
	{"Spain", "Hispania"},
	{"Portugal", "Lusitania"},
	{"France", "Gaul"},
	{"United Kingdom", "Britannia"},
	{"Germany", "Germania"},
	{"Romania", "Dacia"},
	{"Bulgaria", "Thracia"},
}

var builtin = MustBuild(builtinEntries)

// Builtin：进程级内置映射表（只读）
func Builtin() *Table { return builtin }
