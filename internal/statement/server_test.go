package statement

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/statement-extractor/internal/document"
)

func uploadBody(filename string, data []byte) (*bytes.Buffer, string) {
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write(data)
	writer.Close()
	return &b, writer.FormDataContentType()
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return string(body)
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		opener      *mockOpener
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		service = NewServiceWithDeps(db, storage, opener, newMockExtractor(), nil, nil,
			&mockIDGenerator{id: "test-id"}, defaultTimeSource{})
		server = NewServerWithMux(service, auth, http.NewServeMux(), nil)
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.Handler().ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		opener = newMockOpener()
		auth = BasicAuth{}
	})

	JustBeforeEach(func() {
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
			ghttpServer = nil
		}
	})

	Describe("handleIndex", func() {
		It("should return HTML containing Statement Extractor", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
			Expect(readBody(resp)).To(ContainSubstring("Statement Extractor"))
		})

		It("should return Method Not Allowed for POST", func() {
			resp, err := http.Post(ghttpServer.URL()+"/", "text/plain", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			resp.Body.Close()
		})

		It("should return Not Found for unknown paths", func() {
			resp, err := http.Get(ghttpServer.URL() + "/nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests", func() {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/api/statements", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			resp.Body.Close()
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "secret"}
		})

		It("rejects requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/statements")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Statement Extractor"))
			resp.Body.Close()
		})

		It("rejects wrong credentials", func() {
			req, _ := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/statements", nil)
			req.SetBasicAuth("user", "wrong")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			resp.Body.Close()
		})

		It("accepts valid credentials", func() {
			req, _ := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/statements", nil)
			req.SetBasicAuth("user", "secret")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})

		It("leaves metrics open", func() {
			resp, err := http.Get(ghttpServer.URL() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring("statement_extractor_processing_duration_seconds"))
		})
	})

	Describe("handleListStatements", func() {
		When("statements exist", func() {
			BeforeEach(func() {
				db.statements["id1"] = &Statement{ID: "id1", Result: sampleResult()}
				db.statements["id2"] = &Statement{ID: "id2", Result: sampleResult()}
			})

			It("should return all statements", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/statements")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
				var statements []*Statement
				Expect(json.Unmarshal([]byte(readBody(resp)), &statements)).To(Succeed())
				Expect(statements).To(HaveLen(2))
			})
		})

		When("no statements exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/statements")
				Expect(err).NotTo(HaveOccurred())
				Expect(readBody(resp)).To(MatchJSON("[]"))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = io.ErrUnexpectedEOF
			})

			It("should return Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/statements")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).To(ContainSubstring("Internal server error"))
			})
		})
	})

	Describe("handleUploadStatement", func() {
		When("upload succeeds", func() {
			It("should return the created statement", func() {
				body, contentType := uploadBody("statement.pdf", []byte("%PDF-1.4"))
				resp, err := http.Post(ghttpServer.URL()+"/api/statements", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var statement Statement
				Expect(json.Unmarshal([]byte(readBody(resp)), &statement)).To(Succeed())
				Expect(statement.ID).To(Equal("test-id"))
				Expect(statement.SourceID).To(Equal("statement.pdf"))
				Expect(*statement.Result.CardLast4).To(Equal("4321"))
			})
		})

		When("the document type is unsupported", func() {
			BeforeEach(func() {
				opener.openErr = document.ErrUnsupportedType
			})

			It("should return a JSON error", func() {
				body, contentType := uploadBody("notes.txt", []byte("hello"))
				resp, err := http.Post(ghttpServer.URL()+"/api/statements", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
				Expect(readBody(resp)).To(ContainSubstring("unsupported"))
			})
		})

		When("the statement cannot be saved", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("database full")
			})

			It("should return Internal Server Error", func() {
				body, contentType := uploadBody("statement.pdf", []byte("%PDF-1.4"))
				resp, err := http.Post(ghttpServer.URL()+"/api/statements", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).NotTo(ContainSubstring("database full"))
			})
		})

		When("no file is provided", func() {
			It("should ask for a file", func() {
				var b bytes.Buffer
				writer := multipart.NewWriter(&b)
				writer.Close()

				resp, err := http.Post(ghttpServer.URL()+"/api/statements", writer.FormDataContentType(), &b)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("No file was selected"))
			})
		})

		When("the form is invalid", func() {
			It("should return Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/statements", "multipart/form-data", bytes.NewBufferString("invalid"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("Error parsing form"))
			})
		})
	})

	Describe("handleGetStatement", func() {
		BeforeEach(func() {
			db.statements["id1"] = &Statement{ID: "id1", Result: sampleResult()}
		})

		It("should return the statement", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/statements/id1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`"id":"id1"`))
		})

		It("should return Not Found for an unknown id", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/statements/missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("handleGetStatementFile", func() {
		BeforeEach(func() {
			db.statements["id1"] = &Statement{ID: "id1", Filename: "id1_statement.pdf", ContentType: "application/pdf"}
			storage.files["id1_statement.pdf"] = []byte("%PDF-1.4")
		})

		It("should return the uploaded bytes", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/statements/id1/file")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/pdf"))
			Expect(readBody(resp)).To(Equal("%PDF-1.4"))
		})
	})

	Describe("exports", func() {
		BeforeEach(func() {
			db.statements["id1"] = &Statement{ID: "id1", Result: sampleResult()}
		})

		DescribeTable("serves each format",
			func(name, contentType, fragment string) {
				resp, err := http.Get(ghttpServer.URL() + "/api/statements/id1/" + name)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal(contentType))
				Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("id1." + name))
				Expect(readBody(resp)).To(ContainSubstring(fragment))
			},
			Entry("full result", "result.json", "application/json", `"card_last4_confidence": "High"`),
			Entry("minimal result", "minimal.json", "application/json", `"card_last4": "4321"`),
			Entry("transactions", "transactions.csv", "text/csv; charset=utf-8", "2024-01-05,GROCERY MART,45.20"),
			Entry("workbook", "statement.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"),
		)

		It("should return Not Found for an unknown id", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/statements/missing/result.json")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("handleDeleteStatement", func() {
		BeforeEach(func() {
			db.statements["id1"] = &Statement{ID: "id1", Filename: "id1_statement.pdf"}
			storage.files["id1_statement.pdf"] = []byte("%PDF-1.4")
		})

		It("should delete the statement", func() {
			req, _ := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/statements/id1", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()
			Expect(db.statements).To(BeEmpty())
			Expect(storage.files).To(BeEmpty())
		})

		It("should return Not Found for an unknown id", func() {
			req, _ := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/api/statements/missing", nil)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})
})
