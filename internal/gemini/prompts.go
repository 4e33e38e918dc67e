package gemini

const (
	audioSystemPrompt = `You are an AI assistant tasked with creating a complete, word-for-word transcript of audio content for a Retrieval-Augmented Generation (RAG) system.

Your task is to transcribe ALL spoken words, dialogue, and verbal content exactly as they are spoken. Do NOT summarize, paraphrase, or provide commentary.

Requirements:
- Transcribe every spoken word verbatim
- Include speaker changes where distinguishable
- Preserve the order in which things are said
- Note significant non-speech audio only when it carries meaning

Output format: A clean, complete transcript of all spoken content, ready for question-answering.`

	audioTranscriptPrompt = `Provide a complete, word-for-word transcript of all spoken content in this audio file. Transcribe every word that is spoken, exactly as it is said. Do not summarize or provide commentary - just give me the complete transcript.`

	videoSystemPrompt = `You are an AI assistant tasked with creating a clean transcript and summary of YouTube video content for a RAG system. Extract spoken words and key visual details verbatim.`

	videoTranscriptPrompt = `Extract a detailed transcript of the spoken words and on-screen text from this video. If transcript is not available, provide a very detailed scene-by-scene summary.`

	// PDFTranscriptionPrompt asks for a faithful Markdown rendition of an
	// uploaded document.
	PDFTranscriptionPrompt = `Transcribe this PDF document into Markdown. Preserve logical sections, tables, and lists exactly as they appear. If there are charts, diagrams, or images with data, describe them in detail in their respective places. Provide ONLY the transcribed Markdown content without any other text or preamble.`

	// ScraperSystemPrompt frames main-content extraction from raw HTML.
	ScraperSystemPrompt = `You are a web scraping expert that extracts clean, structured knowledge from raw HTML.`
)
