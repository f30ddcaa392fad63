// Package ingest はアップロードされたファイルからの記事取り込みを提供する。
// MIMEタイプの検証、テキスト抽出、記事レコードへの変換を含む。
package ingest

// MIMEタイプ定数
const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDoc  = "application/msword"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedType は許可されたMIMEタイプかどうかを返す。
// 許可リスト方式で、text/plain, PDF, Word (doc/docx) のみ受け付ける。
func AllowedType(mimeType string) bool {
	switch mimeType {
	case mimeText, mimePDF, mimeDoc, mimeDocx:
		return true
	}
	return false
}

// FileTypeDescription はMIMEタイプの表示名を返す。
// 未知のタイプには "Unknown File Type" を返し、拒否メッセージに使用する。
func FileTypeDescription(mimeType string) string {
	switch mimeType {
	case mimePDF:
		return "PDF Document"
	case mimeDoc:
		return "Word Document (DOC)"
	case mimeDocx:
		return "Word Document (DOCX)"
	case mimeText:
		return "Text File"
	default:
		return "Unknown File Type"
	}
}
