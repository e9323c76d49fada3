package config

type WorkerKeyStruct struct {
	ImportQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ImportQueue: "import_documents_queue",
}
