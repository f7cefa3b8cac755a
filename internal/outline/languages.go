package outline

import (
	"regexp"
	"strings"
)

// LanguagePack holds the per-language phrase lists that participate in
// form detection and heading classification. Pure lookup data; the
// decision logic lives in the classifier and builder.
type LanguagePack struct {
	FormPatterns     []string
	TechHeadings     []string
	BusinessHeadings []string
}

// Packs maps a language tag to its pattern lists.
var Packs = map[string]*LanguagePack{
	"spanish": {
		FormPatterns: []string{
			"formulario de solicitud", "servidor público", "funcionario gubernamental",
			"designación", "servicio", "salario", "permanente o temporal",
		},
		TechHeadings: []string{
			"historial de revisiones", "tabla de contenidos", "agradecimientos",
			"introducción", "referencias", "marcas comerciales", "documentos",
			"audiencia objetivo", "trayectorias profesionales", "objetivos de aprendizaje",
			"requisitos de entrada", "estructura y duración del curso", "contenido",
		},
		BusinessHeadings: []string{
			"antecedentes", "resumen", "hitos", "enfoque",
			"evaluación", "apéndice", "términos de referencia",
		},
	},
	"french": {
		FormPatterns: []string{
			"formulaire de demande", "fonctionnaire", "agent gouvernemental",
			"désignation", "service", "salaire", "permanent ou temporaire",
		},
		TechHeadings: []string{
			"historique des révisions", "table des matières", "remerciements",
			"introduction", "références", "marques déposées", "documents",
			"public cible", "parcours professionnels", "objectifs d'apprentissage",
			"conditions d'entrée", "structure et durée du cours", "contenu",
		},
		BusinessHeadings: []string{
			"contexte", "résumé", "jalons", "approche",
			"évaluation", "annexe", "termes de référence",
		},
	},
	"german": {
		FormPatterns: []string{
			"antragsformular", "beamter", "regierungsangestellter",
			"bezeichnung", "dienst", "gehalt", "dauerhaft oder vorübergehend",
		},
		TechHeadings: []string{
			"revisionshistorie", "inhaltsverzeichnis", "danksagungen",
			"einführung", "referenzen", "warenzeichen", "dokumente",
			"zielgruppe", "karrierewege", "lernziele",
			"eingangsvoraussetzungen", "struktur und kursdauer", "inhalt",
		},
		BusinessHeadings: []string{
			"hintergrund", "zusammenfassung", "meilensteine", "ansatz",
			"bewertung", "anhang", "referenzbedingungen",
		},
	},
	"hindi": {
		FormPatterns: []string{
			"आवेदन पत्र", "सरकारी कर्मचारी", "सरकारी अधिकारी",
			"पदनाम", "सेवा", "वेतन", "स्थायी या अस्थायी",
		},
		TechHeadings: []string{
			"संशोधन इतिहास", "विषय सूची", "आभार", "परिचय", "संदर्भ",
			"ट्रेडमार्क", "दस्तावेज", "लक्षित दर्शक", "करियर पथ",
			"सीखने के उद्देश्य", "प्रवेश आवश्यकताएं", "संरचना और पाठ्यक्रम अवधि", "सामग्री",
		},
		BusinessHeadings: []string{
			"पृष्ठभूमि", "सारांश", "मील के पत्थर", "दृष्टिकोण",
			"मूल्यांकन", "परिशिष्ट", "संदर्भ की शर्तें",
		},
	},
	"chinese": {
		FormPatterns: []string{
			"申请表", "公务员", "政府工作人员", "职务", "服务", "工资", "永久或临时",
		},
		TechHeadings: []string{
			"修订历史", "目录", "致谢", "介绍", "参考文献", "商标", "文档",
			"目标受众", "职业道路", "学习目标", "入学要求", "结构和课程持续时间", "内容",
		},
		BusinessHeadings: []string{
			"背景", "摘要", "里程碑", "方法", "评估", "附录", "参考条款",
		},
	},
	"japanese": {
		FormPatterns: []string{
			"申請書", "公務員", "政府職員", "指定", "サービス", "給与", "恒久的または一時的",
		},
		TechHeadings: []string{
			"改訂履歴", "目次", "謝辞", "紹介", "参考文献", "商標", "文書",
			"対象読者", "キャリアパス", "学習目標", "入学要件", "構造とコース期間", "コンテンツ",
		},
		BusinessHeadings: []string{
			"背景", "要約", "マイルストーン", "アプローチ", "評価", "付録", "参照条項",
		},
	},
	"arabic": {
		FormPatterns: []string{
			"نموذج طلب", "موظف حكومي", "خادم الحكومة", "تعيين", "خدمة", "راتب", "دائم أو مؤقت",
		},
		TechHeadings: []string{
			"تاريخ المراجعة", "جدول المحتويات", "شكر وتقدير", "مقدمة", "مراجع", "علامات تجارية", "وثائق",
			"الجمهور المستهدف", "مسارات مهنية", "أهداف التعلم", "متطلبات الدخول", "الهيكل ومدة الدورة", "محتوى",
		},
		BusinessHeadings: []string{
			"خلفية", "ملخص", "معالم", "نهج", "تقييم", "ملحق", "شروط مرجعية",
		},
	},
}

var (
	devanagariRe = regexp.MustCompile(`[\x{0900}-\x{097F}]`)
	cjkRe        = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	kanaRe       = regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`)
	arabicRe     = regexp.MustCompile(`[\x{0600}-\x{06ff}]`)

	frenchAccentsRe  = regexp.MustCompile(`[àáâãäåæçèéêëìíîïðñòóôõöøùúûüýþÿ]`)
	germanAccentsRe  = regexp.MustCompile(`[äöüßÄÖÜ]`)
	spanishAccentsRe = regexp.MustCompile(`[ñáéíóúüÑÁÉÍÓÚÜ]`)
)

// DetectLanguage identifies the document language from sampled text, best
// effort. Script ranges take priority; European languages are scored by
// phrase hits plus diacritic bonuses and need a score above 1. Returns ""
// when nothing matches.
func DetectLanguage(sample string) string {
	if devanagariRe.MatchString(sample) {
		return "hindi"
	}
	if cjkRe.MatchString(sample) {
		return "chinese"
	}
	if kanaRe.MatchString(sample) {
		return "japanese"
	}
	if arabicRe.MatchString(sample) {
		return "arabic"
	}

	low := strings.ToLower(sample)
	scores := map[string]int{}
	for _, lang := range []string{"spanish", "french", "german"} {
		pack := Packs[lang]
		for _, list := range [][]string{pack.FormPatterns, pack.TechHeadings, pack.BusinessHeadings} {
			for _, phrase := range list {
				if strings.Contains(low, phrase) {
					scores[lang]++
				}
			}
		}
	}
	if frenchAccentsRe.MatchString(sample) {
		scores["french"] += 2
	}
	if germanAccentsRe.MatchString(sample) {
		scores["german"] += 2
	}
	if spanishAccentsRe.MatchString(sample) {
		scores["spanish"] += 2
	}

	best, bestScore := "", 0
	for _, lang := range []string{"spanish", "french", "german"} {
		if scores[lang] > bestScore {
			best, bestScore = lang, scores[lang]
		}
	}
	if bestScore > 1 {
		return best
	}
	return ""
}
