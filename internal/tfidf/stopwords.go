package tfidf

import (
	"bufio"
	"os"
	"strings"

	"wordmap/internal/prefecture"
)

// Stopwords：停用词集合，nil 集合可安全查询
type Stopwords map[string]struct{}

func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	s.Add(words...)
	return s
}

func (s Stopwords) Add(words ...string) {
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			s[strings.ToLower(w)] = struct{}{}
		}
	}
}

func (s Stopwords) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// 饮食口コミ中几乎处处出现、对区分地域没有帮助的词
var baseStopwords = []string{
	"店", "円", "味", "料理", "さん", "ラーメン", "肉", "ランチ", "最高", "そば", "麺",
	"雰囲気", "丼", "定食", "メニュー", "満足", "注文", "人", "蕎麦", "感じ", "店員", "普通", "セット",
	"2", "時", "酒", "方", "利用", "うどん", "値段", "ご飯", "的", "時間", "カレー", "スープ", "ボリューム",
	"量", "中", "屋", "こと", "訪問", "1", "コース", "放題", "店内", "牛", "一", "刺身", "ー", "接客",
	"ここ", "どれ", "日", "好き", "焼き", "味噌", "野菜", "種類", "パ", "天ぷら", "何", "感", "予約",
	"カツ", "コス", "よう", "食事", "残念", "揚げ", "対応", "目", "餃子", "寿司", "3", "気", "豚",
	"個室", "そう", "席", "塩", "前", "豊富", "もの", "魚", "唐", "チャーシュー", "おすすめ", "パン",
	"駅", "今日", "醤油", "中華", "提供", "笑", "これ", "丁寧", "サービス", "今回", "コスパ", "サラダ",
}

// 词表用：地名与泛用词，避免地域词表被少数固有名词占满
var wordListExtra = []string{
	"日本", "温泉", "お昼", "ごちそうさま", "隠岐", "来店", "近江", "琵琶湖", "購入", "綺麗", "ゴルフ",
	"会津", "白河", "限定", "仕事", "新鮮", "お腹", "久しぶり", "台湾", "いっぱい", "食堂", "家族",
	"絶品", "オーダー", "越前", "駐車", "300", "郡山", "飛騨", "500", "みたい", "好み", "100", "人気",
	"レストラン", "淡路島", "直島", "三盆", "奄美", "天草", "伊勢", "信州", "軽井沢", "大変", "平日",
	"五島", "佐世保", "島原", "替玉", "無料", "中津", "別府", "スタッフ", "安定", "ーー", "佐野", "伊豆",
	"阿波", "鳴門", "素材", "リーズナブル", "親切", "オススメ", "韓国", "価格", "居心地", "全部", "大山",
	"氷見",
}

// LayoutStopwords：词云布局用
func LayoutStopwords() Stopwords {
	s := NewStopwords(baseStopwords...)
	s.Add("讃岐", "居酒屋")
	return s
}

// WordListStopwords：词表用，额外包含都道府県简称
func WordListStopwords() Stopwords {
	s := NewStopwords(baseStopwords...)
	s.Add(wordListExtra...)
	s.Add(prefecture.ShortNames()...)
	return s
}

// LoadStopwordsFile：每行一个词，空行与 # 开头的行忽略
func LoadStopwordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// WithFile：path 非空时把文件中的词并入 s
func (s Stopwords) WithFile(path string) (Stopwords, error) {
	if path == "" {
		return s, nil
	}
	words, err := LoadStopwordsFile(path)
	if err != nil {
		return s, err
	}
	s.Add(words...)
	return s, nil
}
