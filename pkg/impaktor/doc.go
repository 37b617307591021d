// Package impaktor is a typed client for JSON REST APIs.
//
// A Client holds the base address and timeout every call uses. Calls are made
// with the generic Call function, which names the success payload type S and
// the failure payload type F at the call site:
//
//	client, err := impaktor.New(impaktor.WithBaseAddress("api.example.com/v1"))
//	if err != nil {
//		return err
//	}
//	res := impaktor.Call[User, impaktor.APIError](ctx, client, impaktor.Request{
//		Verb: impaktor.VerbPost,
//		Path: "auth/login",
//		Body: map[string]string{"identifier": id, "password": pw},
//	})
//	if !res.IsSuccessful() {
//		fmt.Println(res.Reason())
//	}
//
// Every call resolves to an outcome.Outcome. A 2xx response decodes into S, a
// response with any other status decodes into F, and anything that produced
// no usable payload (timeouts, connection failures, malformed bodies) becomes
// a transport error carrying a fixed, human-readable message.
//
// Requests are always sent over https with a JSON content type.
package impaktor
