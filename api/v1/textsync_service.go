/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yorkie-team/textsync/api/types"
)

// ServiceName is the full name of the service.
const ServiceName = "textsync.v1.TextSyncService"

// Belows are the full method names of the service.
const (
	TextSyncServiceSyncFullMethod          = "/" + ServiceName + "/Sync"
	TextSyncServiceGetDocumentFullMethod   = "/" + ServiceName + "/GetDocument"
	TextSyncServiceListDocumentsFullMethod = "/" + ServiceName + "/ListDocuments"
	TextSyncServiceGetVersionFullMethod    = "/" + ServiceName + "/GetVersion"
)

// TextSyncServiceClient is the client API for TextSyncService.
type TextSyncServiceClient interface {
	Sync(ctx context.Context, in *types.SyncRequest, opts ...grpc.CallOption) (*types.SyncResponse, error)
	GetDocument(ctx context.Context, in *types.GetDocumentRequest, opts ...grpc.CallOption) (*types.DocumentInfo, error)
	ListDocuments(
		ctx context.Context,
		in *types.ListDocumentsRequest,
		opts ...grpc.CallOption,
	) (*types.ListDocumentsResponse, error)
	GetVersion(ctx context.Context, in *types.VersionRequest, opts ...grpc.CallOption) (*types.VersionDetail, error)
}

type textSyncServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTextSyncServiceClient creates a new client of TextSyncService. Every call
// is encoded with the JSON codec.
func NewTextSyncServiceClient(cc grpc.ClientConnInterface) TextSyncServiceClient {
	return &textSyncServiceClient{cc}
}

func (c *textSyncServiceClient) invoke(
	ctx context.Context,
	method string,
	in, out interface{},
	opts []grpc.CallOption,
) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *textSyncServiceClient) Sync(
	ctx context.Context,
	in *types.SyncRequest,
	opts ...grpc.CallOption,
) (*types.SyncResponse, error) {
	out := new(types.SyncResponse)
	if err := c.invoke(ctx, TextSyncServiceSyncFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *textSyncServiceClient) GetDocument(
	ctx context.Context,
	in *types.GetDocumentRequest,
	opts ...grpc.CallOption,
) (*types.DocumentInfo, error) {
	out := new(types.DocumentInfo)
	if err := c.invoke(ctx, TextSyncServiceGetDocumentFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *textSyncServiceClient) ListDocuments(
	ctx context.Context,
	in *types.ListDocumentsRequest,
	opts ...grpc.CallOption,
) (*types.ListDocumentsResponse, error) {
	out := new(types.ListDocumentsResponse)
	if err := c.invoke(ctx, TextSyncServiceListDocumentsFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *textSyncServiceClient) GetVersion(
	ctx context.Context,
	in *types.VersionRequest,
	opts ...grpc.CallOption,
) (*types.VersionDetail, error) {
	out := new(types.VersionDetail)
	if err := c.invoke(ctx, TextSyncServiceGetVersionFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// TextSyncServiceServer is the server API for TextSyncService.
type TextSyncServiceServer interface {
	Sync(context.Context, *types.SyncRequest) (*types.SyncResponse, error)
	GetDocument(context.Context, *types.GetDocumentRequest) (*types.DocumentInfo, error)
	ListDocuments(context.Context, *types.ListDocumentsRequest) (*types.ListDocumentsResponse, error)
	GetVersion(context.Context, *types.VersionRequest) (*types.VersionDetail, error)
}

// UnimplementedTextSyncServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedTextSyncServiceServer struct{}

// Sync is not implemented.
func (UnimplementedTextSyncServiceServer) Sync(context.Context, *types.SyncRequest) (*types.SyncResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Sync not implemented")
}

// GetDocument is not implemented.
func (UnimplementedTextSyncServiceServer) GetDocument(
	context.Context,
	*types.GetDocumentRequest,
) (*types.DocumentInfo, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDocument not implemented")
}

// ListDocuments is not implemented.
func (UnimplementedTextSyncServiceServer) ListDocuments(
	context.Context,
	*types.ListDocumentsRequest,
) (*types.ListDocumentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListDocuments not implemented")
}

// GetVersion is not implemented.
func (UnimplementedTextSyncServiceServer) GetVersion(
	context.Context,
	*types.VersionRequest,
) (*types.VersionDetail, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetVersion not implemented")
}

// RegisterTextSyncServiceServer registers the given implementation to the
// gRPC server.
func RegisterTextSyncServiceServer(s grpc.ServiceRegistrar, srv TextSyncServiceServer) {
	s.RegisterService(&TextSyncServiceDesc, srv)
}

func syncHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(types.SyncRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextSyncServiceServer).Sync(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TextSyncServiceSyncFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TextSyncServiceServer).Sync(ctx, req.(*types.SyncRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getDocumentHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(types.GetDocumentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextSyncServiceServer).GetDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TextSyncServiceGetDocumentFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TextSyncServiceServer).GetDocument(ctx, req.(*types.GetDocumentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listDocumentsHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(types.ListDocumentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextSyncServiceServer).ListDocuments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TextSyncServiceListDocumentsFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TextSyncServiceServer).ListDocuments(ctx, req.(*types.ListDocumentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getVersionHandler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(types.VersionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextSyncServiceServer).GetVersion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TextSyncServiceGetVersionFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TextSyncServiceServer).GetVersion(ctx, req.(*types.VersionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TextSyncServiceDesc is the grpc.ServiceDesc for TextSyncService.
var TextSyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TextSyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sync", Handler: syncHandler},
		{MethodName: "GetDocument", Handler: getDocumentHandler},
		{MethodName: "ListDocuments", Handler: listDocumentsHandler},
		{MethodName: "GetVersion", Handler: getVersionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ServiceName,
}
