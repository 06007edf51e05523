package model

// TechFile identifies one of the tracked well-known technical files.
type TechFile string

const (
	FileRobotsTxt    TechFile = "robots_txt"
	FileLlmsTxt      TechFile = "llms_txt"
	FileSitemapXML   TechFile = "sitemap_xml"
	FileSecurityTxt  TechFile = "security_txt"
	FileManifestJSON TechFile = "manifest_json"
	FileAdsTxt       TechFile = "ads_txt"
	FileHumansTxt    TechFile = "humans_txt"
	FileAiTxt        TechFile = "ai_txt"
)

// TechFiles is the fixed scan set in its canonical order. Fan-out results,
// score factors and diff output all follow this order.
var TechFiles = []TechFile{
	FileRobotsTxt,
	FileLlmsTxt,
	FileSitemapXML,
	FileSecurityTxt,
	FileManifestJSON,
	FileAdsTxt,
	FileHumansTxt,
	FileAiTxt,
}

var techFilePaths = map[TechFile]string{
	FileRobotsTxt:    "/robots.txt",
	FileLlmsTxt:      "/llms.txt",
	FileSitemapXML:   "/sitemap.xml",
	FileSecurityTxt:  "/.well-known/security.txt",
	FileManifestJSON: "/manifest.json",
	FileAdsTxt:       "/ads.txt",
	FileHumansTxt:    "/humans.txt",
	FileAiTxt:        "/ai.txt",
}

var techFileLabels = map[TechFile]string{
	FileRobotsTxt:    "robots.txt",
	FileLlmsTxt:      "llms.txt",
	FileSitemapXML:   "sitemap.xml",
	FileSecurityTxt:  "security.txt",
	FileManifestJSON: "manifest.json",
	FileAdsTxt:       "ads.txt",
	FileHumansTxt:    "humans.txt",
	FileAiTxt:        "ai.txt",
}

// Path returns the well-known request path for the file, e.g. "/robots.txt".
func (f TechFile) Path() string { return techFilePaths[f] }

// Label returns the human-facing file name, e.g. "robots.txt".
func (f TechFile) Label() string { return techFileLabels[f] }
