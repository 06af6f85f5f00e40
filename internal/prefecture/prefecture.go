// 包 prefecture：47 都道府県的日文名与罗马字目录键对照
package prefecture

import "strings"

// Prefecture：日文正式名（含 都/府/県 后缀）与抓取结果目录使用的罗马字键
type Prefecture struct {
	Name string
	Key  string
}

// 按 JIS 都道府県コード顺序
var all = []Prefecture{
	{"北海道", "hokkaido"}, {"青森県", "aomori"}, {"岩手県", "iwate"}, {"宮城県", "miyagi"},
	{"秋田県", "akita"}, {"山形県", "yamagata"}, {"福島県", "fukushima"}, {"茨城県", "ibaraki"},
	{"栃木県", "tochigi"}, {"群馬県", "gunma"}, {"埼玉県", "saitama"}, {"千葉県", "chiba"},
	{"東京都", "tokyo"}, {"神奈川県", "kanagawa"}, {"新潟県", "niigata"}, {"富山県", "toyama"},
	{"石川県", "ishikawa"}, {"福井県", "fukui"}, {"山梨県", "yamanashi"}, {"長野県", "nagano"},
	{"岐阜県", "gifu"}, {"静岡県", "shizuoka"}, {"愛知県", "aichi"}, {"三重県", "mie"},
	{"滋賀県", "shiga"}, {"京都府", "kyoto"}, {"大阪府", "osaka"}, {"兵庫県", "hyogo"},
	{"奈良県", "nara"}, {"和歌山県", "wakayama"}, {"鳥取県", "tottori"}, {"島根県", "shimane"},
	{"岡山県", "okayama"}, {"広島県", "hiroshima"}, {"山口県", "yamaguchi"}, {"徳島県", "tokushima"},
	{"香川県", "kagawa"}, {"愛媛県", "ehime"}, {"高知県", "kochi"}, {"福岡県", "fukuoka"},
	{"佐賀県", "saga"}, {"長崎県", "nagasaki"}, {"熊本県", "kumamoto"}, {"大分県", "oita"},
	{"宮崎県", "miyazaki"}, {"鹿児島県", "kagoshima"}, {"沖縄県", "okinawa"},
}

var (
	byKey  = map[string]Prefecture{}
	byName = map[string]Prefecture{}
)

func init() {
	for _, p := range all {
		byKey[p.Key] = p
		byName[p.Name] = p
	}
}

// All：返回副本，调用方可自由修改
func All() []Prefecture {
	out := make([]Prefecture, len(all))
	copy(out, all)
	return out
}

func ByKey(key string) (Prefecture, bool) {
	p, ok := byKey[strings.ToLower(key)]
	return p, ok
}

func ByName(name string) (Prefecture, bool) {
	p, ok := byName[name]
	return p, ok
}

// ShortName：去掉 都/府/県 后缀；北海道保持原样
func (p Prefecture) ShortName() string {
	return Short(p.Name)
}

// Short：对任意名称执行同样的后缀裁剪
func Short(name string) string {
	if name == "北海道" {
		return name
	}
	for _, suf := range []string{"都", "府", "県"} {
		if strings.HasSuffix(name, suf) {
			return strings.TrimSuffix(name, suf)
		}
	}
	return name
}

// ShortNames：全部短名，用作停用词
func ShortNames() []string {
	out := make([]string, 0, len(all))
	for _, p := range all {
		out = append(out, p.ShortName())
	}
	return out
}
