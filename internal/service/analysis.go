package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bcmimarlik/site/internal/llm"
	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/sirupsen/logrus"
)

const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

type AnalysisRequest struct {
	Emotion  string `json:"emotion"`
	Material string `json:"material"`
	Nature   string `json:"nature"`
}

// Validate reports ErrMissingAnalysisInput when any input is blank.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.Emotion) == "" || strings.TrimSpace(r.Material) == "" || strings.TrimSpace(r.Nature) == "" {
		return ErrMissingAnalysisInput
	}
	return nil
}

type Analysis struct {
	Analysis string `json:"analysis"`
	Source   string `json:"source"`
}

// Generator produces text for a prompt. llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*llm.Response, error)
}

// AnalysisService writes a short architectural analysis of a visitor's
// preferences. It always answers: when the generator is missing or fails a
// canned analysis is returned.
type AnalysisService struct {
	generator Generator
	pick      func(n int) int
}

// NewAnalysisService creates a new AnalysisService. generator may be nil.
func NewAnalysisService(generator Generator) *AnalysisService {
	return &AnalysisService{
		generator: generator,
		pick:      rand.IntN,
	}
}

func (a *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.Emotion = strings.TrimSpace(req.Emotion)
	req.Material = strings.TrimSpace(req.Material)
	req.Nature = strings.TrimSpace(req.Nature)

	if a.generator != nil {
		resp, err := a.generator.Generate(ctx, analysisPrompt(req))
		if err == nil {
			metrics.AnalysisResponses.WithLabelValues(SourceProvider).Inc()
			return &Analysis{Analysis: resp.Content, Source: SourceProvider}, nil
		}
		logrus.Warnf("analysis generation failed, using fallback: %v", err)
	}

	metrics.AnalysisResponses.WithLabelValues(SourceFallback).Inc()
	return &Analysis{Analysis: a.fallback(req), Source: SourceFallback}, nil
}

func (a *AnalysisService) fallback(req AnalysisRequest) string {
	text := fallbackAnalyses[a.pick(len(fallbackAnalyses))]
	return fmt.Sprintf(text, req.Emotion, req.Material, req.Nature)
}

func analysisPrompt(req AnalysisRequest) string {
	return fmt.Sprintf(`Sen Muğla, Ula ve Akyaka bölgesinde çalışan, doğa ile çağdaş mimariyi buluşturan bir mimarlık stüdyosunun baş mimarısın.
Bir ziyaretçi hayalindeki ev için şu tercihleri paylaştı:
- Hissetmek istediği duygu: %q
- Tercih ettiği malzeme: %q
- Doğayla ilişkisi: %q

Bu tercihleri Akçapınar'ın doğal peyzajıyla ilişkilendiren, üç paragraflık, sıcak ve profesyonel bir mimari analiz yaz.
Önerdiğin mimari yaklaşımı, malzemenin bölgedeki kullanımını ve iç-dış mekan ilişkisini anlat. Yalnızca Türkçe yaz, başlık veya liste kullanma.`,
		req.Emotion, req.Material, req.Nature)
}

// fallbackAnalyses take emotion, material and nature as %[1]s, %[2]s and %[3]s.
var fallbackAnalyses = []string{
	`Tercihleriniz, özellikle "%[2]s" materyalinin ve "%[1]s" duygusunun, Akçapınar'ın doğal peyzajıyla olağanüstü bir uyum içinde olduğunu gösteriyor. Bu bölgenin denizle buluşan orman dokusu, sizin tercih ettiğiniz yaklaşımı destekleyen bir zemin sunuyor. Önerdiğimiz mimari stil, minimalizmin zarafetini doğanın organik formlarıyla birleştiren, çağdaş bir yaklaşım. Yapı, çevresindeki doğal unsurlarla diyalog kuran, ancak kendi kimliğini koruyan bir karaktere sahip olmalı.

%[2]s kullanımı, özellikle Akçapınar'ın iklim koşulları ve doğal çevresi göz önüne alındığında, hem estetik hem de fonksiyonel açıdan ideal bir seçim. Bu materyal, zaman içinde doğayla bütünleşerek kendine özgü bir patina kazanacak ve yapıya derinlik katacaktır. İç mekanlarda ise, doğal ışığın kontrollü kullanımı ve açık-kapalı mekan geçişleri, "%[3]s" ifadesinin mimariye yansımasını sağlayacaktır.

Lüks ve minimalizm arasındaki denge, gereksiz süslemelerden kaçınırken, her detayın özenle tasarlanmasıyla kurulmalı. Bu yaklaşım, Akçapınar'ın sakin ve huzurlu atmosferiyle mükemmel bir uyum içinde olacak, eviniz hem bir sığınak hem de doğayla iç içe yaşamın bir parçası haline gelecektir.`,

	`Akçapınar'ın eşsiz doğası, özellikle "%[3]s" ifadesinin altını çizdiği özellikler, sizin mimari vizyonunuzla buluştuğunda ortaya çıkacak sonuç gerçekten özel olacak. "%[1]s" duygusunu yansıtacak bir yapı, bu bölgenin deniz kenarındaki konumu ve orman dokusuyla harmanlandığında, çağdaş lüks mimarinin en zarif örneklerinden birini oluşturabilir.

%[2]s seçiminiz, bu bölgede hem dayanıklılık hem de estetik açıdan son derece uygun. Materyalin doğal dokusu, Akçapınar'ın çevresel karakteriyle uyumlu bir dil oluşturacak. Yapının tasarımında, iç ve dış mekan arasındaki sınırların bulanıklaştırılması, doğanın içeriye taşınması ve "%[1]s" duygusunun her alanda hissedilmesi ön planda tutulmalı.

Minimalist yaklaşım, burada sadeleştirme değil, özü yakalama anlamına geliyor. Her mekan, işlevselliği ve estetiği bir arada sunmalı, lüks ise detaylarda ve malzeme seçimlerinde kendini göstermeli. Bu şekilde, Akçapınar'ın doğal güzellikleriyle rekabet etmek yerine, onlarla uyum içinde var olan bir mimari ortaya çıkacaktır.`,

	`Tercihleriniz, Akçapınar'ın doğal çevresiyle kurulacak mimari diyalog için mükemmel bir başlangıç noktası sunuyor. "%[1]s" duygusunun mimariye yansıması, özellikle bu bölgenin sakin atmosferiyle birleştiğinde, benzersiz bir yaşam deneyimi yaratacaktır. %[2]s kullanımı, hem sürdürülebilirlik hem de estetik değerler açısından bu projeyi güçlendirecek bir tercih.

Akçapınar'ın "%[3]s" özelliklerini mimariye entegre etmek, yapının çevreyle kurduğu ilişkiyi derinleştirecek. Büyük cam yüzeyler, teraslar ve bahçe alanları, doğal peyzajla sürekli bir görsel bağlantı sağlayacak. İç mekanlarda ise, doğal malzemelerin kullanımı ve minimal dekorasyon anlayışı, huzurlu bir atmosfer yaratacaktır.

Lüks, burada gösterişten ziyade, yaşam kalitesi ve mekansal deneyimle tanımlanmalı. Her detay, "%[1]s" duygusunu destekleyecek şekilde düşünülmeli, ancak doğanın önüne geçmemeli. Bu denge, Akçapınar'ın ruhunu yansıtan, çağdaş ve zarif bir mimari dil oluşturacaktır.`,
}
